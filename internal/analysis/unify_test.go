package analysis

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/KaramelBytes/cnodash/internal/dataset"
)

func table(t *testing.T, name string, lines ...string) *dataset.Table {
	t.Helper()
	tbl, err := dataset.ReadCSVFrom(strings.NewReader(strings.Join(lines, "\n")), name, dataset.ReadOptions{Encoding: "utf-8"})
	require.NoError(t, err)
	return tbl
}

func scenarioTables(t *testing.T) (*dataset.Table, *dataset.Table) {
	t.Helper()
	a := table(t, "cno_areas.csv",
		"CNO,Estado",
		"1,SP",
		"2,PERNAMBUCO",
		"3,RJ",
	)
	b := table(t, "cno.csv",
		"CNO,Situação,Destinação,Área total",
		"1,2,X,100",
		"2,2,Y,600",
		"3,2,X,20000",
	)
	return a, b
}

func str(p *string) string {
	if p == nil {
		return "<nil>"
	}
	return *p
}

func TestUnify_Scenario(t *testing.T) {
	a, b := scenarioTables(t)
	ds, err := Unify(a, b)
	require.NoError(t, err)

	require.Len(t, ds.Records, 3)
	assert.Equal(t, []string{"cno_areas.csv", "cno.csv"}, ds.Sources)
	assert.Equal(t, "SP", str(ds.Records[0].State))
	assert.Nil(t, ds.Records[1].State, "PERNAMBUCO must be blanked")
	assert.Equal(t, "RJ", str(ds.Records[2].State))
	require.NotNil(t, ds.Records[2].Area)
	assert.Equal(t, 20000.0, *ds.Records[2].Area)
	for _, r := range ds.Records {
		assert.Equal(t, ActiveStatus, r.Status)
	}
}

func TestUnify_DropsInactiveAndNullStatus(t *testing.T) {
	a := table(t, "a.csv",
		"CNO,Estado,Área total",
		"1,SP,10",
		"2,RJ,20",
		"9,MG,30", // only in A: status is null after the join
	)
	b := table(t, "b.csv",
		"CNO,Situação,Destinação",
		"1,1,X",
		"2,2.0,Y",
		"3,,Z",
	)
	ds, err := Unify(a, b)
	require.NoError(t, err)
	require.Len(t, ds.Records, 1)
	assert.Equal(t, "2", ds.Records[0].CNO)
	assert.Equal(t, "Y", str(ds.Records[0].Destination))
}

func TestUnify_OuterJoinKeepsRightOnlyRows(t *testing.T) {
	a := table(t, "a.csv",
		"CNO,Estado,Área total",
		"1,SP,10",
	)
	b := table(t, "b.csv",
		"CNO,Situação,Destinação",
		"1,2,X",
		"7,2,Y",
	)
	ds, err := Unify(a, b)
	require.NoError(t, err)
	require.Len(t, ds.Records, 2)
	right := ds.Records[1]
	assert.Equal(t, "7", right.CNO)
	assert.Nil(t, right.State)
	assert.Nil(t, right.Area)
	assert.Equal(t, "Y", str(right.Destination))
}

func TestUnify_OneToManyJoin(t *testing.T) {
	a := table(t, "a.csv",
		"CNO,Estado,Área total",
		"1,SP,10",
		"1,RJ,20",
	)
	b := table(t, "b.csv",
		"CNO,Situação,Destinação",
		"1,2,X",
		"1,2,Y",
	)
	ds, err := Unify(a, b)
	require.NoError(t, err)
	require.Len(t, ds.Records, 4)
	got := make([]string, 0, 4)
	for _, r := range ds.Records {
		got = append(got, str(r.State)+"/"+str(r.Destination))
	}
	assert.Equal(t, []string{"SP/X", "SP/Y", "RJ/X", "RJ/Y"}, got)
}

func TestUnify_DenylistIsExactMatch(t *testing.T) {
	lines := []string{"CNO,Estado,Situação,Destinação,Área total"}
	for i, s := range append(append([]string{}, InvalidStates...), "Pernambuco", "São Paulo", "SÃO  PAULO", "PE") {
		lines = append(lines, strings.Join([]string{string(rune('a' + i)), s, "2", "X", "1"}, ","))
	}
	a := table(t, "a.csv", lines...)
	b := table(t, "b.csv", "CNO")

	ds, err := Unify(a, b)
	require.NoError(t, err)
	require.Len(t, ds.Records, len(InvalidStates)+4)

	var kept []string
	for _, r := range ds.Records {
		if r.State != nil {
			for _, bad := range InvalidStates {
				assert.NotEqual(t, bad, *r.State)
			}
			kept = append(kept, *r.State)
		}
	}
	assert.ElementsMatch(t, []string{"Pernambuco", "São Paulo", "SÃO  PAULO", "PE"}, kept)
}

func TestUnify_MissingColumn(t *testing.T) {
	a := table(t, "a.csv", "CNO,Estado", "1,SP")
	b := table(t, "b.csv", "CNO,Situação,Destinação", "1,2,X")

	_, err := Unify(a, b)
	var mc *MissingColumnError
	require.True(t, errors.As(err, &mc))
	assert.Equal(t, ColArea, mc.Column)
	assert.Contains(t, err.Error(), "a.csv, b.csv")

	_, err = Unify(table(t, "a.csv", "ID,Estado", "1,SP"), b)
	require.True(t, errors.As(err, &mc))
	assert.Equal(t, ColCNO, mc.Column)
}
