package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/daughters-of-aether/arena-client/pkg/character"
)

var elementFlag string

var charactersCmd = &cobra.Command{
	Use:   "characters",
	Short: "List the Daughters of Aether",
	Args:  cobra.NoArgs,
	RunE:  runCharacters,
}

func init() {
	charactersCmd.Flags().StringVar(&elementFlag, "element", "", "only list daughters of this element")
	rootCmd.AddCommand(charactersCmd)
}

func runCharacters(cmd *cobra.Command, args []string) error {
	roster := character.All()
	if elementFlag != "" {
		roster = character.ByElement(character.Element(elementFlag))
		if len(roster) == 0 {
			fmt.Println(warningStyle.Render(fmt.Sprintf("No daughter wields %q. Elements: %v", elementFlag, character.Elements())))
			return nil
		}
	}

	for _, c := range roster {
		fmt.Println(cardStyle.Render(describeCharacter(c)))
	}
	return nil
}

func describeCharacter(c character.Character) string {
	return titleStyle.Copy().Padding(0).Render(fmt.Sprintf("%d. %s", c.Id, c.Name)) + "\n" +
		promptStyle.Render(c.Description) + "\n" +
		field("Element", c.Element) + "\n" +
		field("Model", c.ModelPath())
}
