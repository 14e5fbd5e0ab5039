package attempts

import (
	"testing"

	"climbing/logbook/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sample() []domain.Attempt {
	return []domain.Attempt{
		{RID: 1, Mode: "Redpoint", AttemptNo: 1, Date: "2024-05-01", Time: "18:00", Grade: "V3", Colour: "Blue", Result: "Fall"},
		{RID: 1, Mode: "Redpoint", AttemptNo: 2, Date: "2024-05-01", Time: "18:20", Grade: "V3", Colour: "Blue", Result: "Top"},
		{RID: 2, Mode: "Flash", AttemptNo: 1, Date: "2024-05-03", Time: "09:15", Grade: "V10", Colour: "black", Result: "Top"},
		{RID: 3, Mode: "Redpoint", AttemptNo: 1, Date: "2024-04-28T00:00:00", Time: "20:05:00", Grade: "6a", Colour: "Red", Result: "Fall"},
	}
}

func rids(list []domain.Attempt) []int64 {
	out := make([]int64, 0, len(list))
	for _, a := range list {
		out = append(out, a.RID*10+int64(a.AttemptNo))
	}
	return out
}

func TestSort_Default(t *testing.T) {
	list := sample()
	Sort(list, nil)
	assert.Equal(t, []int64{21, 12, 11, 31}, rids(list))
}

func TestSort_GradeOrder(t *testing.T) {
	list := sample()
	order := map[string]int{"V3": 3, "V10": 10}

	Sort(list, order, SortKey{Field: FieldGrade}, SortKey{Field: FieldAttemptNo, Desc: true})
	// Ranked grades by order, then unranked lexically.
	assert.Equal(t, []int64{12, 11, 21, 31}, rids(list))
}

func TestSort_Stable(t *testing.T) {
	list := sample()
	Sort(list, nil, SortKey{Field: FieldResult})
	assert.Equal(t, []int64{11, 31, 12, 21}, rids(list))
}

func TestSort_ColourIgnoresCase(t *testing.T) {
	list := sample()
	Sort(list, nil, SortKey{Field: FieldColour}, SortKey{Field: FieldAttemptNo})
	assert.Equal(t, []int64{21, 11, 12, 31}, rids(list))
}

func TestParseKeys(t *testing.T) {
	keys, err := ParseKeys("grade:desc, date")
	require.NoError(t, err)
	assert.Equal(t, []SortKey{{Field: FieldGrade, Desc: true}, {Field: FieldDate}}, keys)

	keys, err = ParseKeys("")
	require.NoError(t, err)
	assert.Equal(t, DefaultKeys, keys)

	_, err = ParseKeys("height")
	assert.Error(t, err)
	_, err = ParseKeys("date:sideways")
	assert.Error(t, err)
}

func TestNextAttemptNo(t *testing.T) {
	list := sample()
	assert.Equal(t, 3, NextAttemptNo(list, 1, "Redpoint"))
	assert.Equal(t, 1, NextAttemptNo(list, 1, "Flash"))
	assert.Equal(t, 2, NextAttemptNo(list, 2, "Flash"))
	assert.Equal(t, 1, NextAttemptNo(nil, 9, "Flash"))
}

func TestRows(t *testing.T) {
	list := []domain.Attempt{
		{Grade: "V3", Colour: "Blue", Mode: "Flash", Result: "Top", Rating: 4, Notes: "crimpy", Date: "2024-04-28T00:00:00", Time: "20:05:00"},
		{Grade: "V1", Mode: "Redpoint", Date: "soon", Time: ""},
	}

	rows := Rows(list)
	require.Len(t, rows, 2)
	assert.Equal(t, []string{"V3", "Blue", "Flash", "Top", "4", "crimpy", "2024-04-28", "20:05"}, rows[0])
	assert.Equal(t, []string{"V1", "", "Redpoint", "", "", "", "soon", ""}, rows[1])
	assert.Len(t, rows[0], len(Header))
}

func TestForRoute(t *testing.T) {
	assert.Len(t, ForRoute(sample(), 1), 2)
	assert.Empty(t, ForRoute(sample(), 99))
}
