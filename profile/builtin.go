// CLAUDE:SUMMARY Built-in customer profiles — generic, farrell, nel, primetals.
package profile

import (
	"regexp"
	"strings"

	"github.com/hazyhaar/bomex/bompipe"
)

func builtins() []*Profile {
	return []*Profile{
		{
			Key:            GenericKey,
			HeaderKeywords: []string{"ITEM", "QTY", "QUANTITY", "DESCRIPTION", "PART", "MFG"},
		},
		{
			Key:            "farrell",
			HeaderKeywords: []string{"ITEM", "QTY", "DESCRIPTION", "MFG/PART", "PART NUMBER"},
			Rename: map[string]string{
				"PART NUMBER": "MFGPART",
				"PART NO":     "MFGPART",
			},
			DetectKeywords: []string{"FARRELL"},
			transform:      splitCompositeMfg,
		},
		{
			Key:          "nel",
			HeaderAnchor: "BILL OF MATERIAL",
			RejectKeywords: []string{
				"SEE NOTE", "REFER TO", "INSTALLATION INSTRUCTION", "TORQUE TO",
			},
			DetectKeywords: []string{"NEL HYDROGEN"},
			transform:      scrubQuantities,
		},
		{
			Key:             "primetals",
			HeaderKeywords:  []string{"ITEM", "MFG", "MFGPART", "DESCRIPTION", "QTY"},
			SplitDualColumn: true,
			DetectKeywords:  []string{"PRIMETALS"},
		},
	}
}

// splitCompositeMfg splits a combined "MFG/PART" column on the first slash
// into separate MFG and MFGPART columns.
func splitCompositeMfg(t *bompipe.MergedTable) {
	idx := -1
	for i, col := range t.Columns {
		if strings.EqualFold(strings.TrimSpace(col), "MFG/PART") {
			idx = i
			break
		}
	}
	if idx < 0 {
		return
	}

	cols := make([]string, 0, len(t.Columns)+1)
	cols = append(cols, t.Columns[:idx]...)
	cols = append(cols, "MFG", "MFGPART")
	cols = append(cols, t.Columns[idx+1:]...)
	t.Columns = cols

	for i, row := range t.Rows {
		mfg, part := row[idx], naSentinel
		if j := strings.IndexByte(row[idx], '/'); j >= 0 {
			mfg = strings.TrimSpace(row[idx][:j])
			part = strings.TrimSpace(row[idx][j+1:])
		}
		out := make([]string, 0, len(row)+1)
		out = append(out, row[:idx]...)
		out = append(out, mfg, part)
		out = append(out, row[idx+1:]...)
		t.Rows[i] = out
	}
}

var leadingNumberRe = regexp.MustCompile(`\d+([.,]\d+)?`)

// scrubQuantities reduces quantity cells like "2 PCS" or "QTY: 4" to the
// bare number, defaulting to 1 when none is present.
func scrubQuantities(t *bompipe.MergedTable) {
	idx := -1
	for i, col := range t.Columns {
		upper := strings.ToUpper(col)
		if strings.Contains(upper, "QTY") || strings.Contains(upper, "QUANT") {
			idx = i
			break
		}
	}
	if idx < 0 {
		return
	}
	for _, row := range t.Rows {
		if idx >= len(row) {
			continue
		}
		if m := leadingNumberRe.FindString(row[idx]); m != "" {
			row[idx] = m
		} else {
			row[idx] = "1"
		}
	}
}
