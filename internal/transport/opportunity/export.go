package opportunity

import (
	"bytes"
	"fmt"
	"io"
	"net/http"
	"sort"

	"github.com/gin-gonic/gin"
	"github.com/xuri/excelize/v2"

	domainopp "github.com/MustafaBasol/crm-sub007/internal/domain/opportunity"
	oppsvc "github.com/MustafaBasol/crm-sub007/internal/service/opportunity"
	"github.com/MustafaBasol/crm-sub007/internal/transport/httpx"
)

const (
	boardSheet   = "Sheet1"
	xlsxMIMEType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
)

var boardHeader = []any{
	"Stage", "Opportunity", "Status", "Amount", "Currency",
	"Probability", "Expected Close", "Owner", "Team Size",
}

func exportBoard(svc *oppsvc.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		b, err := svc.Board(c.Request.Context(), httpx.MustActor(c))
		if err != nil {
			httpx.Error(c, err)
			return
		}

		var buf bytes.Buffer
		if err := WriteBoard(&buf, b); err != nil {
			httpx.Error(c, fmt.Errorf("export board: %w", err))
			return
		}
		c.Header("Content-Disposition", `attachment; filename="board.xlsx"`)
		c.Data(http.StatusOK, xlsxMIMEType, buf.Bytes())
	}
}

// WriteBoard renders the board as a single-sheet workbook, one row per
// opportunity in stage order.
func WriteBoard(w io.Writer, b domainopp.Board) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetRow(boardSheet, "A1", &boardHeader); err != nil {
		return err
	}

	stageNames := make(map[string]string, len(b.Stages))
	stageRank := make(map[string]int, len(b.Stages))
	for i, st := range b.Stages {
		stageNames[st.ID.String()] = st.Name
		stageRank[st.ID.String()] = i
	}

	rows := make([]domainopp.BoardItem, len(b.Opportunities))
	copy(rows, b.Opportunities)
	sort.SliceStable(rows, func(i, j int) bool {
		return stageRank[rows[i].StageID.String()] < stageRank[rows[j].StageID.String()]
	})

	for i, item := range rows {
		expected := ""
		if item.ExpectedCloseDate != nil {
			expected = *item.ExpectedCloseDate
		}
		row := []any{
			stageNames[item.StageID.String()],
			item.Name,
			string(item.Status),
			item.Amount.InexactFloat64(),
			item.Currency,
			item.ForecastProbability.InexactFloat64(),
			expected,
			item.OwnerUserID.String(),
			len(item.TeamUserIDs),
		}
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(boardSheet, cell, &row); err != nil {
			return err
		}
	}
	return f.Write(w)
}
