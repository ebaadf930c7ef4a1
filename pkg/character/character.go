// Package character holds the roster of the twelve Daughters of Aether.
package character

import (
	"fmt"
	"strings"
	"sync"

	"github.com/pkg/errors"
)

var ErrCharacterNotFound = errors.New("character not found")

type Element string

const (
	ElementStarlight Element = "Starlight"
	ElementFire      Element = "Fire"
	ElementLight     Element = "Light"
	ElementMoon      Element = "Moon"
	ElementWater     Element = "Water"
	ElementShadow    Element = "Shadow"
	ElementStorm     Element = "Storm"
	ElementEarth     Element = "Earth"
	ElementWind      Element = "Wind"
	ElementCosmos    Element = "Cosmos"
	ElementTime      Element = "Time"
	ElementSpirit    Element = "Spirit"
)

type Character struct {
	Id          int
	Name        string
	Description string
	Element     Element
}

func newCharacter(id int, name, description string, element Element) Character {
	return Character{
		Id:          id,
		Name:        name,
		Description: description,
		Element:     element,
	}
}

// ModelPath is the character's 3D model asset.
func (c Character) ModelPath() string {
	return fmt.Sprintf("/models/%s.glb", strings.ToLower(c.Name))
}

// TexturePath is the character's texture asset.
func (c Character) TexturePath() string {
	return fmt.Sprintf("/textures/%s.jpg", strings.ToLower(c.Name))
}

var roster = []Character{
	newCharacter(1, "Lyra", "The Starlight Weaver, born of celestial harmonies", ElementStarlight),
	newCharacter(2, "Seraphina", "The Flame Dancer, keeper of eternal fire", ElementFire),
	newCharacter(3, "Aurelia", "The Golden Dawn, herald of new beginnings", ElementLight),
	newCharacter(4, "Celeste", "The Moon Whisperer, guardian of night's secrets", ElementMoon),
	newCharacter(5, "Thalassa", "The Ocean's Heart, mistress of deep waters", ElementWater),
	newCharacter(6, "Nyx", "The Shadow Walker, born of darkness itself", ElementShadow),
	newCharacter(7, "Isolde", "The Storm Caller, wielder of thunder's might", ElementStorm),
	newCharacter(8, "Elara", "The Earth Mother, keeper of ancient wisdom", ElementEarth),
	newCharacter(9, "Zephyra", "The Wind Dancer, spirit of the free air", ElementWind),
	newCharacter(10, "Astraea", "The Cosmic Weaver, spinner of fate's threads", ElementCosmos),
	newCharacter(11, "Rhiannon", "The Time Keeper, guardian of moments past", ElementTime),
	newCharacter(12, "Morwen", "The Spirit Walker, bridge between worlds", ElementSpirit),
}

// All returns a copy of the roster in id order.
func All() []Character {
	res := make([]Character, len(roster))
	copy(res, roster)
	return res
}

func ByID(id int) (Character, error) {
	for _, c := range roster {
		if c.Id == id {
			return c, nil
		}
	}
	return Character{}, errors.Wrapf(ErrCharacterNotFound, "id %d", id)
}

// ByName looks a character up case-insensitively.
func ByName(name string) (Character, error) {
	for _, c := range roster {
		if strings.EqualFold(c.Name, name) {
			return c, nil
		}
	}
	return Character{}, errors.Wrapf(ErrCharacterNotFound, "name %q", name)
}

// ByElement matches the element case-insensitively. Unknown elements give an
// empty result.
func ByElement(element Element) []Character {
	var res []Character
	for _, c := range roster {
		if strings.EqualFold(string(c.Element), string(element)) {
			res = append(res, c)
		}
	}
	return res
}

// Elements returns the distinct elements in the order they first appear.
func Elements() []Element {
	seen := make(map[Element]struct{})
	var res []Element
	for _, c := range roster {
		if _, ok := seen[c.Element]; ok {
			continue
		}
		seen[c.Element] = struct{}{}
		res = append(res, c.Element)
	}
	return res
}

// Selection tracks the character a player picked and whether the picker is
// showing. Picking a character closes the picker.
type Selection struct {
	mu       sync.RWMutex
	selected *Character
	visible  bool
}

func (s *Selection) Select(c Character) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.selected = &c
	s.visible = false
}

// SelectByID selects the character with the given id.
func (s *Selection) SelectByID(id int) (Character, error) {
	c, err := ByID(id)
	if err != nil {
		return Character{}, err
	}
	s.Select(c)
	return c, nil
}

func (s *Selection) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.selected = nil
}

// Selected returns the current selection, if any.
func (s *Selection) Selected() (Character, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.selected == nil {
		return Character{}, false
	}
	return *s.selected, true
}

func (s *Selection) IsSelected(id int) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.selected != nil && s.selected.Id == id
}

func (s *Selection) Show() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.visible = true
}

func (s *Selection) Hide() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.visible = false
}

func (s *Selection) Visible() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.visible
}
