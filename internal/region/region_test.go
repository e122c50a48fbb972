package region

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtract(t *testing.T) {
	b := MustCompileBoundary(`head(.*?)tail`)

	t.Run("returns captured group", func(t *testing.T) {
		assert.Equal(t, " X ", Extract("A head X tail B", b))
	})

	t.Run("empty when end marker missing", func(t *testing.T) {
		assert.Equal(t, "", Extract("A head X B", b))
	})

	t.Run("empty source", func(t *testing.T) {
		assert.Equal(t, "", Extract("", b))
	})

	t.Run("stops at nearest end marker", func(t *testing.T) {
		assert.Equal(t, " one ", Extract("head one tail head two tail", b))
	})

	t.Run("case insensitive", func(t *testing.T) {
		assert.Equal(t, " X ", Extract("HEAD X TAIL", b))
	})

	t.Run("outer group keeps markers", func(t *testing.T) {
		outer := MustCompileBoundary(`(Activa.*?Passiva)`)
		assert.Equal(t, "Activa 1 2 Passiva", Extract("x Activa 1 2 Passiva 3 4", outer))
	})
}

func TestCompileBoundary(t *testing.T) {
	tests := []struct {
		name    string
		pattern string
		wantErr error
	}{
		{"no group", `head.*?tail`, ErrBoundaryGroups},
		{"two groups", `(head)(.*?)tail`, ErrBoundaryGroups},
		{"non-capturing groups allowed", `(?:head|start)(.*?)tail`, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := CompileBoundary(tt.pattern)
			if tt.wantErr == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}

	_, err := CompileBoundary(`(unclosed`)
	assert.Error(t, err)
}

func TestRelaxSpaces(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{`Totaal activa`, `Totaal\s+activa`},
		{`Totaal   activa`, `Totaal\s+activa`},
		{`Total\s+assets`, `Total\s+assets`},
		{`[ab ]c d`, `[ab ]c\s+d`},
		{`[] ]x y`, `[] ]x\s+y`},
		{`a\ b`, `a\ b`},
		{`a +b`, `a +b`},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, RelaxSpaces(tt.in))
		})
	}

	b := MustCompileBoundary(`(Toelichting op de balans)`)
	assert.Equal(t, "Toelichting  op\tde balans", Extract("x Toelichting  op\tde balans y", b))
}

func TestPlan_Carve(t *testing.T) {
	plan, err := NewPlan([]Spec{
		{Name: "debit", Parent: "balance", Boundary: MustCompileBoundary(`Assets(.*?)Liabilities`)},
		{Name: "balance", Boundary: MustCompileBoundary(`Balance sheet(.*?)Income statement`)},
		{Name: "credit", Parent: "balance", Boundary: MustCompileBoundary(`Liabilities(.+)`)},
		{Name: "income", Boundary: MustCompileBoundary(`Income statement(.+)`)},
	})
	require.NoError(t, err)

	var names []string
	for _, s := range plan.Specs() {
		names = append(names, s.Name)
	}
	assert.Equal(t, []string{"balance", "income", "debit", "credit"}, names, "parents carved before children")

	text := "Balance sheet Assets Total 10 9 Liabilities Total 4 3 Income statement Total 7 6"
	regions := plan.Carve(text)

	assert.Equal(t, text, regions.Get(Document))
	assert.Equal(t, " Total 10 9 ", regions.Get("debit"))
	assert.Equal(t, " Total 4 3 ", regions.Get("credit"))
	assert.Equal(t, " Total 7 6", regions.Get("income"))
	assert.True(t, regions.Found("balance"))
}

func TestPlan_AbsentParentCascades(t *testing.T) {
	plan, err := NewPlan([]Spec{
		{Name: "balance", Boundary: MustCompileBoundary(`Balance sheet(.*?)Income statement`)},
		{Name: "debit", Parent: "balance", Boundary: MustCompileBoundary(`(Assets.*)`)},
	})
	require.NoError(t, err)

	regions := plan.Carve("Assets 1 2 but no balance sheet heading")
	assert.False(t, regions.Found("balance"))
	assert.False(t, regions.Found("debit"), "child of an absent region is absent")
}

func TestNewPlan_Errors(t *testing.T) {
	b := MustCompileBoundary(`(x)`)

	t.Run("duplicate", func(t *testing.T) {
		_, err := NewPlan([]Spec{{Name: "a", Boundary: b}, {Name: "a", Boundary: b}})
		assert.ErrorIs(t, err, ErrDuplicateRegion)
	})

	t.Run("unknown parent", func(t *testing.T) {
		_, err := NewPlan([]Spec{{Name: "a", Parent: "missing", Boundary: b}})
		assert.ErrorIs(t, err, ErrUnknownParent)
	})

	t.Run("cycle", func(t *testing.T) {
		_, err := NewPlan([]Spec{
			{Name: "a", Parent: "b", Boundary: b},
			{Name: "b", Parent: "a", Boundary: b},
		})
		assert.ErrorIs(t, err, ErrDependencyCycle)
	})

	t.Run("reserved name", func(t *testing.T) {
		_, err := NewPlan([]Spec{{Name: Document, Boundary: b}})
		assert.Error(t, err)
	})

	t.Run("explicit document parent", func(t *testing.T) {
		plan, err := NewPlan([]Spec{{Name: "a", Parent: Document, Boundary: b}})
		require.NoError(t, err)
		assert.True(t, plan.Has("a"))
		assert.True(t, plan.Has(Document))
		assert.False(t, plan.Has("b"))
	})
}
