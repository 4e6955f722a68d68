package sheetsclient

import (
	"fmt"
)

// CallTabTitle is the tab a round's call list is published to
func CallTabTitle(round int) string {
	return fmt.Sprintf("Chamada %d", round)
}

// PublishCall writes a call list to its own tab. The tab is created on first publish and
// overwritten on republish, so a call regenerated after a disqualification replaces the
// stale list instead of appending to it.
func (c *Client) PublishCall(spreadsheetID, tabTitle string, records [][]string) error {
	exists, err := c.SheetExists(spreadsheetID, tabTitle)
	if err != nil {
		return err
	}

	if exists {
		if err := c.ClearValues(spreadsheetID, tabRange(tabTitle, "A1:ZZ")); err != nil {
			return fmt.Errorf("failed to clear existing call tab: %w", err)
		}
	} else {
		if _, err := c.CreateSheet(spreadsheetID, tabTitle); err != nil {
			return err
		}
	}

	if err := c.UpdateValues(spreadsheetID, tabRange(tabTitle, "A1"), toCells(records)); err != nil {
		return fmt.Errorf("failed to write call tab: %w", err)
	}

	return nil
}

// tabRange quotes the tab title so titles with spaces resolve in A1 notation
func tabRange(tabTitle, cells string) string {
	return fmt.Sprintf("'%s'!%s", tabTitle, cells)
}

func toCells(records [][]string) [][]interface{} {
	cells := make([][]interface{}, len(records))
	for i, record := range records {
		row := make([]interface{}, len(record))
		for j, v := range record {
			row[j] = v
		}
		cells[i] = row
	}
	return cells
}
