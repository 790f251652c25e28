package menusync

import (
	"context"
	"testing"

	"embruns/internal/models"

	"github.com/stretchr/testify/assert"
)

func TestRefFor(t *testing.T) {
	tests := []struct {
		name    string
		item    models.MenuItem
		index   int
		want    ItemRef
		segment string
	}{
		{"identified", models.MenuItem{ID: "it_42", Name: "Sole"}, 3, Identified{ID: "it_42"}, "it_42"},
		{"positional", models.MenuItem{Name: "Sole"}, 3, Positional{Index: 3}, "3"},
		{"positional head", models.MenuItem{Name: "Sole"}, 0, Positional{Index: 0}, "0"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ref := RefFor(tt.item, tt.index)
			assert.Equal(t, tt.want, ref)
			assert.Equal(t, tt.segment, ref.PathSegment())
		})
	}
}

func TestConfirmFunc(t *testing.T) {
	var got string
	c := ConfirmFunc(func(_ context.Context, prompt string) bool {
		got = prompt
		return false
	})
	assert.False(t, c.Confirm(context.Background(), "delete?"))
	assert.Equal(t, "delete?", got)
	assert.True(t, AlwaysConfirm.Confirm(context.Background(), "delete?"))
}
