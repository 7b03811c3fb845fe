package expr

import (
	"testing"

	reflectcat "github.com/atfkit/atf/pkg/reflect"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func evalExpr(t *testing.T, cat *reflectcat.ExtendedCatalogue, src string) (Result, error) {
	t.Helper()
	toks, err := Lex(src)
	require.NoError(t, err)
	ops, err := Parse(toks)
	require.NoError(t, err)
	return Build(ops, cat, scenarioBaseAddressExpected)
}

func TestBuild_GlobalVarMember(t *testing.T) {
	cat := buildScenarioCatalogue(t)
	res, err := evalExpr(t, cat, "gConfig.count")
	require.NoError(t, err)
	assert.Equal(t, StateLValue, res.Kind)
	assert.Equal(t, "int32_t", res.Node.Name)
	require.Len(t, res.Program, 2)
	assert.Equal(t, StepAbsModule, res.Program[0].Kind)
	assert.Equal(t, uint64(0x1000), res.Program[0].Value) // 0x140001000 - base
	assert.Equal(t, StepRelAdd, res.Program[1].Kind)
	assert.Equal(t, uint64(0), res.Program[1].Value)
}

func TestBuild_GetRefOnGlobal(t *testing.T) {
	cat := buildScenarioCatalogue(t)
	res, err := evalExpr(t, cat, "&gConfig")
	require.NoError(t, err)
	assert.Equal(t, StateAddress, res.Kind)
	assert.Equal(t, reflectcat.KindPointer, res.Node.Kind)
}

func TestBuild_ArrayIndexInBounds(t *testing.T) {
	cat := buildScenarioCatalogue(t)
	res, err := evalExpr(t, cat, "gList[2]")
	require.NoError(t, err)
	assert.Equal(t, StateLValue, res.Kind)
	assert.Equal(t, "Item", res.Node.Name)
}

func TestBuild_ArrayIndexOutOfBounds(t *testing.T) {
	cat := buildScenarioCatalogue(t)
	_, err := evalExpr(t, cat, "gList[5]")
	require.Error(t, err)
	assert.Equal(t, "Invalid fetch array, invalid index [5], have array count 4.", err.Error())
}

func TestBuild_ConstNumberIsAddressState(t *testing.T) {
	cat := buildScenarioCatalogue(t)
	res, err := evalExpr(t, cat, "42")
	require.NoError(t, err)
	assert.Equal(t, StateAddress, res.Kind)
	require.Len(t, res.Program, 1)
	assert.Equal(t, StepAbs, res.Program[0].Kind)
	assert.Equal(t, uint64(42), res.Program[0].Value)
}

func TestBuild_DecltypeAloneIsError(t *testing.T) {
	cat := buildScenarioCatalogue(t)
	_, err := evalExpr(t, cat, "decltype(gConfig)")
	require.Error(t, err)
	assert.Equal(t, "Invalid expr(final is type, expected l-value/address).", err.Error())
}

func TestBuild_GlobalIdentNotFound(t *testing.T) {
	cat := buildScenarioCatalogue(t)
	_, err := evalExpr(t, cat, "gMissing")
	require.Error(t, err)
	assert.Equal(t, "Global ident 'gMissing' not found", err.Error())
}

func TestBuild_AddressProgramAssociativeRelAdd(t *testing.T) {
	cat := buildScenarioCatalogue(t)
	res, err := evalExpr(t, cat, "gConfig.name")
	require.NoError(t, err)

	deref := func(uint64) (uint64, error) { return 0, nil }
	addr, err := res.Program.Evaluate(0x140000000, deref)
	require.NoError(t, err)
	assert.Equal(t, uint64(0x140001004), addr)
}
