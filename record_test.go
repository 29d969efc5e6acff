package godbf

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNewRecord_Names(t *testing.T) {
	r := NewRecord(map[string]Value{
		"name": TextValue("Bob"),
		"id":   IntValue(1),
	})
	require.Equal(t, []string{"ID", "NAME"}, r.Names())
	require.Equal(t, 2, r.Len())
	require.True(t, r.Value("Name").Equal(TextValue("Bob")))
	require.Equal(t, KindAbsent, r.Value("missing").Kind())
}

func TestNewRecord_CaseVariantsCollapse(t *testing.T) {
	r := NewRecord(map[string]Value{
		"id": IntValue(1),
		"ID": IntValue(2),
		"Id": IntValue(3),
	})
	require.Equal(t, []string{"ID"}, r.Names())
	require.Equal(t, 1, r.Len())
	require.True(t, r.Value("id").Equal(IntValue(2)))
}
