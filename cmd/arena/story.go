package main

import (
	"context"
	"fmt"
	"time"

	"github.com/AlecAivazis/survey/v2"
	"github.com/spf13/cobra"

	"github.com/daughters-of-aether/arena-client/pkg/story"
)

var (
	autoPlayFlag bool
	intervalFlag time.Duration
)

var storyCmd = &cobra.Command{
	Use:   "story",
	Short: "Read the story of the Daughters of Aether",
	Args:  cobra.NoArgs,
	RunE:  runStory,
}

func init() {
	storyCmd.Flags().BoolVar(&autoPlayFlag, "auto", false, "advance cards automatically")
	storyCmd.Flags().DurationVar(&intervalFlag, "interval", story.DefaultInterval, "time each card is shown during auto-play")
	rootCmd.AddCommand(storyCmd)
}

func runStory(cmd *cobra.Command, args []string) error {
	carousel := story.NewCarousel()
	printCard(carousel)

	if autoPlayFlag {
		return autoPlayStory(rootContext, carousel)
	}
	return browseStory(carousel)
}

// autoPlayStory shows every card once and stops after the last one.
func autoPlayStory(ctx context.Context, carousel *story.Carousel) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	err := carousel.Run(ctx, intervalFlag, func(story.Card) {
		printCard(carousel)
		if carousel.IsLast() {
			cancel()
		}
	})
	if carousel.IsLast() {
		return nil
	}
	return err
}

func browseStory(carousel *story.Carousel) error {
	const (
		next     = "Next"
		previous = "Previous"
		restart  = "Restart"
		skip     = "Skip"
	)

	for carousel.Visible() {
		var choice string
		err := survey.AskOne(&survey.Select{
			Message: promptStyle.Render(fmt.Sprintf("%.0f%% read", carousel.Progress())),
			Options: []string{next, previous, restart, skip},
		}, &choice)
		if err != nil {
			return err
		}

		switch choice {
		case next:
			if carousel.IsLast() {
				carousel.Skip()
				continue
			}
			carousel.Next()
		case previous:
			carousel.Previous()
		case restart:
			carousel.Restart()
		case skip:
			carousel.Skip()
			continue
		}
		printCard(carousel)
	}
	return nil
}

func printCard(carousel *story.Carousel) {
	card := carousel.Current()
	body := titleStyle.Copy().Padding(0).Render(fmt.Sprintf("%d/%d  %s", card.Id, carousel.Len(), card.Title)) +
		"\n\n" + card.Content
	fmt.Println(cardStyle.Render(body))
}
