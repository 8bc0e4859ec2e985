package export_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"vendoreval/db"
	"vendoreval/internal/export"
)

func TestBuildWorkbookRows(t *testing.T) {
	received := time.Date(2026, 8, 1, 10, 0, 0, 0, time.UTC)
	decision := "ACCEPTED"
	vendors := []db.VendorWithScore{
		{Vendor: db.Vendor{
			ID: 1, Name: "Acme Media", Scopes: []string{"Media"},
			RFIStatus: db.RFICompleted, RFIReceivedAt: &received, FinalDecision: &decision,
		}},
		{Vendor: db.Vendor{
			ID: 2, Name: "Empty Corp", Scopes: []string{"AI"}, RFIStatus: db.RFIPending,
		}},
	}
	evaluations := map[int64][]db.Evaluation{
		1: {{
			VendorID: 1, EvaluatorName: "Carol", EvaluatorRole: "CONTRIBUTOR",
			Domain: "Media", OverallScore: 72.5,
			ExperienceScore: 8, ExperienceRemark: "deep portfolio",
			CreatedAt: time.Date(2026, 8, 15, 9, 0, 0, 0, time.UTC),
		}},
	}

	f, err := export.BuildWorkbook(vendors, evaluations)
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows("Evaluations")
	require.NoError(t, err)
	require.Len(t, rows, 3, "header plus one evaluation row plus one placeholder")

	header := rows[0]
	require.Equal(t, "Vendor Name", header[0])
	require.Equal(t, "Evaluator Name", header[1])
	require.Contains(t, header, "Experience Score")
	require.Contains(t, header, "Experience Remarks")
	require.Contains(t, header, "Final Decision")
	require.Contains(t, header, "Evaluation Date")
	// 5 identity columns, 18 score/remark pairs, 4 trailing columns.
	require.Len(t, header, 5+18*2+4)

	evalRow := rows[1]
	require.Equal(t, "Acme Media", evalRow[0])
	require.Equal(t, "Carol", evalRow[1])
	require.Equal(t, "72.50", evalRow[4])
	require.Equal(t, "8", evalRow[5])
	require.Equal(t, "deep portfolio", evalRow[6])

	placeholder := rows[2]
	require.Equal(t, "Empty Corp", placeholder[0])
	require.Equal(t, "No evaluations", placeholder[1])
}

func TestBuildWorkbookPendingDecision(t *testing.T) {
	vendors := []db.VendorWithScore{
		{Vendor: db.Vendor{ID: 1, Name: "Undecided", Scopes: []string{"AI"}, RFIStatus: db.RFIInProgress}},
	}

	f, err := export.BuildWorkbook(vendors, nil)
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows("Evaluations")
	require.NoError(t, err)
	require.Len(t, rows, 2)
	require.Contains(t, rows[1], "PENDING")
	require.Contains(t, rows[1], "IN_PROGRESS")
}
