package applications

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func strPtr(s string) *string { return &s }

func TestAddNote(t *testing.T) {
	env := newTestEnv(t)
	app := env.createApplication(t)

	tests := []struct {
		name    string
		note    *string
		wantMsg string
	}{
		{"valid note", strPtr("Strong candidate"), ""},
		{"missing", nil, MsgFieldRequired},
		{"empty", strPtr(""), MsgFieldBlank},
		{"whitespace only", strPtr(" \t\n "), MsgFieldBlank},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			n, err := env.svc.AddNote(context.Background(), env.reviewer, app.ID, tt.note)
			if tt.wantMsg == "" {
				require.NoError(t, err)
				assert.Equal(t, *tt.note, n.Note)
				assert.Equal(t, env.reviewer.UserID, n.CreatedBy)
				assert.Equal(t, app.ID, n.ApplicationID)
				return
			}
			var ve *ValidationError
			require.ErrorAs(t, err, &ve)
			assert.Equal(t, "note", ve.Field)
			assert.Equal(t, tt.wantMsg, ve.Message)
		})
	}

	notes, err := env.svc.ListNotes(context.Background(), env.reviewer, app.ID)
	require.NoError(t, err)
	require.Len(t, notes, 1)
	assert.Equal(t, "Strong candidate", notes[0].Note)
}

func TestAddNote_UnknownApplication(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.svc.AddNote(context.Background(), env.reviewer, 12345, strPtr("hello"))

	var notFound *NotFoundError
	require.ErrorAs(t, err, &notFound)
	assert.Equal(t, "application", notFound.Resource)
	assert.Zero(t, env.store.Writes())
}

func TestNotes_OrderedByCreation(t *testing.T) {
	env := newTestEnv(t)
	app := env.createApplication(t)
	ctx := context.Background()

	for _, text := range []string{"first", "second", "third"} {
		_, err := env.svc.AddNote(ctx, env.reviewer, app.ID, strPtr(text))
		require.NoError(t, err)
	}

	notes, err := env.svc.ListNotes(ctx, env.reviewer, app.ID)
	require.NoError(t, err)
	require.Len(t, notes, 3)
	assert.Equal(t, "first", notes[0].Note)
	assert.Equal(t, "third", notes[2].Note)

	detail, err := env.svc.Get(ctx, env.reviewer, app.ID)
	require.NoError(t, err)
	assert.Len(t, detail.Notes, 3)
}
