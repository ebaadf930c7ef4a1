// Package story presents the Daughters of Aether introduction as a carousel
// of cards.
package story

import (
	"context"
	"sync"
	"time"
)

// DefaultInterval is how long a card stays up during auto-play.
const DefaultInterval = 5 * time.Second

type Card struct {
	Id      int
	Title   string
	Content string
	Image   string
}

var cards = []Card{
	{
		Id:      1,
		Title:   "The Golden Age's End",
		Content: "For eons, the realm of Aether flourished under the gentle hand of the Sky Father, a beacon of light and harmony. His daughters, born of starlight and blessed with elemental grace, guarded the kingdom. But peace breeds complacency, and from the darkest void, the Demon Diablos rose.",
		Image:   "/story/card1.png",
	},
	{
		Id:      2,
		Title:   "The Curse of Shadows",
		Content: "In a cataclysmic battle, Diablos struck. The Sky Father fell, his light extinguished. His daughters, once unified, were shattered by a curse that twisted their hearts, turning them against each other, trapping them in an eternal, shadowed conflict. The kingdom crumbled to dust.",
		Image:   "/story/card2.png",
	},
	{
		Id:      3,
		Title:   "A Flicker of Hope",
		Content: "Yet, a fragment of the Sky Father's light ensues. Within each surviving daughter, a seed of true purpose awakens: to avenge their father, break the curse, and reclaim Aether. But the curse remains, tainting their perception: to each, every other daughter is but another twisted, malevolent shadow of Diablos's doing.",
		Image:   "/story/card3.png",
	},
	{
		Id:      4,
		Title:   "The Path to Atonement",
		Content: "To lift the veil, they must confront their distorted reflections in the corrupted arenas. Stakes are high, for only by proving their true spirit can they gather the Aetheric essence to challenge Diablos. The forfeited power of the defeated will fuel the champion's ascent. Will you be the one to restore Aether?",
		Image:   "/story/card4.png",
	},
}

// Cards returns a copy of the story cards in reading order.
func Cards() []Card {
	res := make([]Card, len(cards))
	copy(res, cards)
	return res
}

// Carousel walks the story cards. A new carousel starts on the first card,
// visible, with auto-play on. Navigation wraps around at both ends.
type Carousel struct {
	mu       sync.Mutex
	cards    []Card
	index    int
	visible  bool
	autoPlay bool
}

func NewCarousel() *Carousel {
	return &Carousel{
		cards:    Cards(),
		visible:  true,
		autoPlay: true,
	}
}

func (c *Carousel) Current() Card {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.cards[c.index]
}

func (c *Carousel) Index() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.index
}

func (c *Carousel) Len() int {
	return len(c.cards)
}

func (c *Carousel) IsFirst() bool {
	return c.Index() == 0
}

func (c *Carousel) IsLast() bool {
	return c.Index() == len(c.cards)-1
}

func (c *Carousel) Next() Card {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.index = (c.index + 1) % len(c.cards)
	return c.cards[c.index]
}

func (c *Carousel) Previous() Card {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.index = (c.index - 1 + len(c.cards)) % len(c.cards)
	return c.cards[c.index]
}

// GoTo jumps to the card at index. Out of range indexes are ignored.
func (c *Carousel) GoTo(index int) Card {
	c.mu.Lock()
	defer c.mu.Unlock()

	if index >= 0 && index < len(c.cards) {
		c.index = index
	}
	return c.cards[c.index]
}

// Skip hides the story.
func (c *Carousel) Skip() {
	c.Hide()
}

// Restart shows the story again from the first card.
func (c *Carousel) Restart() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.index = 0
	c.visible = true
}

func (c *Carousel) Show() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.visible = true
}

func (c *Carousel) Hide() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.visible = false
}

func (c *Carousel) Visible() bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.visible
}

// ToggleAutoPlay flips auto-play and returns the new setting.
func (c *Carousel) ToggleAutoPlay() bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.autoPlay = !c.autoPlay
	return c.autoPlay
}

func (c *Carousel) AutoPlay() bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.autoPlay
}

// Progress is the percentage of the story read, counting the current card.
func (c *Carousel) Progress() float64 {
	c.mu.Lock()
	defer c.mu.Unlock()

	return float64(c.index+1) / float64(len(c.cards)) * 100
}

// Run advances the carousel every interval while it is visible and
// auto-playing, calling fn with each new card. It returns when ctx is done.
// A non-positive interval uses DefaultInterval.
func (c *Carousel) Run(ctx context.Context, interval time.Duration, fn func(Card)) error {
	if interval <= 0 {
		interval = DefaultInterval
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}

		if !c.Visible() || !c.AutoPlay() {
			continue
		}

		card := c.Next()
		if fn != nil {
			fn(card)
		}
	}
}
