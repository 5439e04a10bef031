package main

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/manifoldco/promptui"
	"github.com/sergi/go-diff/diffmatchpatch"

	"aria/internal/confirm"
)

// reviewPendingAction walks the user through a pending action: show the
// preview, then confirm, edit or cancel it.
func (c *CLI) reviewPendingAction(ctx context.Context, actionID string) error {
	for {
		preview, err := c.container.Confirms.Preview(ctx, actionID, c.sessionID)
		if errors.Is(err, confirm.ErrActionNotFound) {
			return nil
		}
		if err != nil {
			return err
		}
		c.printPreview(preview)

		if !isTTY() {
			fmt.Println(infoColor("reply with a confirmation to proceed, or ask me to change or cancel it"))
			return nil
		}

		choice, err := c.selectActionChoice(preview)
		if err != nil {
			// ^C on the menu leaves the action pending.
			return nil
		}
		switch choice {
		case "Confirm":
			summary, err := c.container.Dispatcher.Confirm(ctx, actionID, c.sessionID)
			if err != nil {
				fmt.Println(errColor(err.Error()))
				return nil
			}
			fmt.Println(okColor(summary))
			return nil
		case "Edit":
			if err := c.editPendingAction(ctx, actionID, preview); err != nil {
				fmt.Println(errColor(err.Error()))
			}
		case "Cancel":
			if err := c.container.Confirms.Cancel(ctx, actionID, c.sessionID); err != nil {
				fmt.Println(errColor(err.Error()))
				return nil
			}
			fmt.Println(infoColor("cancelled, nothing was executed"))
			return nil
		default:
			fmt.Println(infoColor("the action stays pending; it expires after an hour"))
			return nil
		}
	}
}

func (c *CLI) printPreview(preview confirm.Preview) {
	fmt.Printf("\n%s  %s\n", warnColor("pending:"), preview.Title)
	spec, ok := confirm.SpecFor(preview.Kind)
	if !ok {
		return
	}
	for _, field := range spec.DisplayFields {
		fmt.Printf("  %-22s %s\n", infoColor(field), preview.Fields[field])
	}
	fmt.Printf("  %s\n\n", infoColor(preview.Summary))
}

func (c *CLI) selectActionChoice(preview confirm.Preview) (string, error) {
	items := []string{"Confirm", "Cancel", "Decide later"}
	if len(preview.EditableFields) > 0 {
		items = []string{"Confirm", "Edit", "Cancel", "Decide later"}
	}
	prompt := promptui.Select{
		Label: "What should happen with this action",
		Items: items,
	}
	_, choice, err := prompt.Run()
	return choice, err
}

// editPendingAction prompts for one field change and shows the diff.
func (c *CLI) editPendingAction(ctx context.Context, actionID string, preview confirm.Preview) error {
	fieldPrompt := promptui.Select{
		Label: "Which field",
		Items: preview.EditableFields,
	}
	_, field, err := fieldPrompt.Run()
	if err != nil {
		return nil
	}

	current := preview.Fields[field]
	if current == confirm.PlaceholderNone {
		current = ""
	}
	valuePrompt := promptui.Prompt{
		Label:   "New " + field,
		Default: current,
	}
	value, err := valuePrompt.Run()
	if err != nil {
		return nil
	}

	edits := map[string]any{field: any(value)}
	// CC lists are entered comma separated.
	if field == confirm.FieldCCRecipients {
		var cc []string
		for _, entry := range strings.Split(value, ",") {
			if entry = strings.TrimSpace(entry); entry != "" {
				cc = append(cc, entry)
			}
		}
		edits[field] = cc
	}

	updated, err := c.container.Confirms.Edit(ctx, actionID, c.sessionID, edits)
	if err != nil {
		return err
	}

	dmp := diffmatchpatch.New()
	diffs := dmp.DiffMain(current, updated.Fields[field], false)
	fmt.Printf("  %s %s\n", infoColor(field+":"), dmp.DiffPrettyText(diffs))
	return nil
}
