package services

import (
	"context"
	"fmt"
	"time"

	"github.com/xuri/excelize/v2"
)

// ExportDuelHistoryExcel builds an xlsx workbook of resolved duels (completed
// and cancelled) for the admin export endpoint. Challenges are retained
// forever, so this is the platform's duel audit trail.
func ExportDuelHistoryExcel(ctx context.Context, store DuelStore) (*excelize.File, error) {
	challenges, err := store.History(ctx)
	if err != nil {
		return nil, err
	}

	f := excelize.NewFile()
	sheet := "Duel History"
	index, err := f.NewSheet(sheet)
	if err != nil {
		return nil, fmt.Errorf("failed to create sheet: %w", err)
	}
	f.SetActiveSheet(index)
	f.DeleteSheet("Sheet1")

	headers := []string{"Challenge ID", "Challenger", "Opponent", "Stake", "Status", "Winner", "Prize", "Created", "Completed"}
	for i, header := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		f.SetCellValue(sheet, cell, header)
	}

	for row, challenge := range challenges {
		opponent := ""
		if challenge.OpponentID != nil {
			opponent = *challenge.OpponentID
		}
		winner := ""
		prize := 0
		if challenge.WinnerID != nil {
			winner = *challenge.WinnerID
		}
		for _, participant := range challenge.Participants {
			if participant.IsWinner {
				prize = participant.PrizeReceived
			}
		}
		completed := ""
		if challenge.CompletedAt != nil {
			completed = challenge.CompletedAt.Format(time.RFC3339)
		}

		values := []interface{}{
			challenge.ID,
			challenge.ChallengerID,
			opponent,
			challenge.Stake,
			string(challenge.Status),
			winner,
			prize,
			challenge.CreatedAt.Format(time.RFC3339),
			completed,
		}
		for col, value := range values {
			cell, _ := excelize.CoordinatesToCellName(col+1, row+2)
			f.SetCellValue(sheet, cell, value)
		}
	}

	return f, nil
}
