package catalog

import (
	"strconv"
	"strings"
	"testing"

	"climbing/logbook/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocationNames(t *testing.T) {
	tests := []struct {
		name    string
		prefix  string
		method  Method
		start   string
		end     string
		list    string
		want    []string
		wantErr bool
	}{
		{name: "range", method: MethodRange, start: "1", end: "3", want: []string{"1", "2", "3"}},
		{name: "range with prefix", prefix: " Wall ", method: MethodRange, start: "4", end: "5", want: []string{"Wall 4", "Wall 5"}},
		{name: "single element range", method: MethodRange, start: "7", end: "7", want: []string{"7"}},
		{name: "zero start", method: MethodRange, start: "0", end: "3", wantErr: true},
		{name: "end before start", method: MethodRange, start: "5", end: "3", wantErr: true},
		{name: "not a number", method: MethodRange, start: "a", end: "3", wantErr: true},
		{name: "largest range", method: MethodRange, start: "1", end: "500", want: numbered(1, 500)},
		{name: "range too large", method: MethodRange, start: "1", end: "1000000000", wantErr: true},
		{name: "individual too many", method: MethodIndividual, list: strings.Join(numbered(1, 501), ","), wantErr: true},
		{name: "individual", method: MethodIndividual, list: "Cave, , Slab ,Roof", want: []string{"Cave", "Slab", "Roof"}},
		{name: "individual with prefix", prefix: "Lead", method: MethodIndividual, list: "R1,R2", want: []string{"Lead R1", "Lead R2"}},
		{name: "individual blanks only", method: MethodIndividual, list: " , ,", wantErr: true},
		{name: "unknown method", method: "csv", list: "a", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := LocationNames(tt.prefix, tt.method, tt.start, tt.end, tt.list)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidForm)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestLocationForm_Payload(t *testing.T) {
	form := LocationForm{Company: "Gravity", Gym: "Brunswick", ClimbType: "Boulder", Method: MethodRange, RangeStart: "1", RangeEnd: "2"}
	payload, err := form.Payload()
	require.NoError(t, err)
	assert.Equal(t, []domain.NewLocation{{Location: "1", Type: "Boulder"}, {Location: "2", Type: "Boulder"}}, payload)

	form.ClimbType = ""
	assert.ErrorIs(t, form.Validate(), ErrInvalidForm)
}

func TestCompanyForm(t *testing.T) {
	form := CompanyForm{Name: "  Gravity ", BoulderGradeSystem: "V", SportGradeSystem: "Ewbank", PrimaryCountry: "Australia"}
	payload, err := form.Payload()
	require.NoError(t, err)
	assert.Equal(t, "Gravity", payload.CompanyName)

	form.SportGradeSystem = ""
	assert.ErrorIs(t, form.Validate(), ErrInvalidForm)
}

func TestGymForm(t *testing.T) {
	assert.ErrorIs(t, GymForm{Suburb: "Brunswick"}.Validate(), ErrInvalidForm)
	assert.ErrorIs(t, GymForm{Company: "Gravity", Suburb: " "}.Validate(), ErrInvalidForm)

	payload, err := GymForm{Company: "Gravity", Suburb: "Brunswick ", City: "Melbourne"}.Payload()
	require.NoError(t, err)
	assert.Equal(t, domain.NewGym{CompanyName: "Gravity", Suburb: "Brunswick", City: "Melbourne"}, payload)
}

func TestColourForm(t *testing.T) {
	for _, hex := range []string{"", "#fff", "#A1B2C3"} {
		assert.NoError(t, ColourForm{Company: "Gravity", Name: "Blue", HexCode: hex}.Validate(), hex)
	}
	for _, hex := range []string{"fff", "#ffff", "#GGGGGG", "#12345"} {
		assert.ErrorIs(t, ColourForm{Company: "Gravity", Name: "Blue", HexCode: hex}.Validate(), ErrInvalidForm, hex)
	}

	payload, err := ColourForm{Company: "Gravity", Name: "Blue", HexCode: "#00f"}.Payload()
	require.NoError(t, err)
	assert.Equal(t, "#00F", payload.HexCode)
}

func numbered(from, to int) []string {
	out := make([]string, 0, to-from+1)
	for i := from; i <= to; i++ {
		out = append(out, strconv.Itoa(i))
	}
	return out
}
