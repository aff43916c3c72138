package terminal

import (
	"errors"

	"github.com/charmbracelet/huh"
)

// ErrCanceled is returned by a Prompter when the user aborted the prompt
var ErrCanceled = errors.New("selection canceled")

// Prompter asks the user to pick among items and answers with the
// indexes of the picked ones
type Prompter interface {
	SelectOne(prompt string, items []string) (int, error)
	SelectMany(prompt string, items []string) ([]int, error)
}

// HuhPrompter renders the prompts with charmbracelet/huh
type HuhPrompter struct{}

func (HuhPrompter) SelectOne(prompt string, items []string) (int, error) {
	if len(items) == 0 {
		return 0, ErrCanceled
	}

	var selected int
	err := huh.NewSelect[int]().
		Title(prompt).
		Options(indexedOptions(items)...).
		Value(&selected).
		Run()
	if err != nil {
		return 0, promptErr(err)
	}
	return selected, nil
}

func (HuhPrompter) SelectMany(prompt string, items []string) ([]int, error) {
	if len(items) == 0 {
		return nil, nil
	}

	var selected []int
	err := huh.NewMultiSelect[int]().
		Title(prompt).
		Options(indexedOptions(items)...).
		Value(&selected).
		Run()
	if err != nil {
		return nil, promptErr(err)
	}
	return selected, nil
}

func indexedOptions(items []string) []huh.Option[int] {
	opts := make([]huh.Option[int], len(items))
	for i, item := range items {
		opts[i] = huh.NewOption(item, i)
	}
	return opts
}

func promptErr(err error) error {
	if errors.Is(err, huh.ErrUserAborted) {
		return ErrCanceled
	}
	return err
}
