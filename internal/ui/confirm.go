package ui

import "github.com/charmbracelet/huh"

// Confirm asks the user a Y/n question and blocks for the answer. Used by
// the receiver to accept or decline an incoming transfer once metadata
// arrives.
func Confirm(title, description string) (bool, error) {
	var accepted bool

	form := huh.NewForm(
		huh.NewGroup(
			huh.NewConfirm().
				Title(title).
				Description(description).
				Affirmative("Accept").
				Negative("Decline").
				Value(&accepted),
		),
	)

	if err := form.Run(); err != nil {
		return false, err
	}

	return accepted, nil
}
