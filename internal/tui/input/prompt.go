// Package input parses the TUI command prompt.
package input

import (
	"errors"
	"fmt"
	"strings"
)

// PromptCommand describes a command suggestion entry.
type PromptCommand struct {
	Name        string
	Description string
}

// Commands lists the prompt commands in suggestion order.
var Commands = []PromptCommand{
	{Name: "/pull", Description: "Pull a group's future tasks onto this day"},
	{Name: "/auto", Description: "Auto-schedule unscheduled tasks (optionally one group)"},
	{Name: "/goto", Description: "Jump to a date (YYYY-MM-DD, tomorrow, monday...)"},
	{Name: "/today", Description: "Jump to today"},
	{Name: "/quit", Description: "Quit"},
}

// ErrEmptyPrompt is returned for a blank prompt.
var ErrEmptyPrompt = errors.New("empty prompt")

// Action is a parsed prompt line.
type Action struct {
	Command string // without the leading slash
	Arg     string
}

// Parse splits a prompt line into a known command and its argument.
func Parse(line string) (Action, error) {
	line = strings.TrimSpace(line)
	if line == "" {
		return Action{}, ErrEmptyPrompt
	}
	if !strings.HasPrefix(line, "/") {
		return Action{}, fmt.Errorf("commands start with /, got %q", line)
	}

	name, arg, _ := strings.Cut(line, " ")
	name = strings.ToLower(name)
	arg = strings.TrimSpace(arg)

	for _, cmd := range Commands {
		if cmd.Name != name {
			continue
		}
		action := Action{Command: strings.TrimPrefix(name, "/"), Arg: arg}
		switch action.Command {
		case "pull", "goto":
			if arg == "" {
				return Action{}, fmt.Errorf("%s needs an argument", name)
			}
		}
		return action, nil
	}
	return Action{}, fmt.Errorf("unknown command %q", name)
}

// PromptMatchingCommands returns commands that match the current input prefix.
func PromptMatchingCommands(input string, commands []PromptCommand) []PromptCommand {
	if !strings.HasPrefix(strings.TrimSpace(input), "/") {
		return nil
	}
	if strings.Contains(input, " ") {
		return nil
	}

	prefix := strings.ToLower(strings.TrimSpace(input))
	matches := make([]PromptCommand, 0, len(commands))
	for _, cmd := range commands {
		if strings.HasPrefix(strings.ToLower(cmd.Name), prefix) {
			matches = append(matches, cmd)
		}
	}
	return matches
}

// PromptAutocomplete returns the first matching command and whether it exists.
func PromptAutocomplete(input string, commands []PromptCommand) (string, bool) {
	matches := PromptMatchingCommands(input, commands)
	if len(matches) == 0 {
		return "", false
	}
	return matches[0].Name + " ", true
}
