package keyring

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	gokeyring "github.com/zalando/go-keyring"
)

func TestSetAndGet(t *testing.T) {
	gokeyring.MockInit()

	for _, e := range Entries {
		t.Run(string(e), func(t *testing.T) {
			require.NoError(t, Set(e, "secret-"+string(e)))
			got, err := Get(e)
			require.NoError(t, err)
			assert.Equal(t, "secret-"+string(e), got)
		})
	}
}

func TestEntriesAreIndependent(t *testing.T) {
	gokeyring.MockInit()

	require.NoError(t, SetConnectionString("postgres://tracker@localhost:5432/innerlevel"))
	_ = Delete(InsightToken)

	_, err := GetInsightToken()
	assert.ErrorIs(t, err, ErrNotFound)

	got, err := GetConnectionString()
	require.NoError(t, err)
	assert.Equal(t, "postgres://tracker@localhost:5432/innerlevel", got)
}

func TestSetEmpty(t *testing.T) {
	gokeyring.MockInit()

	assert.Error(t, SetConnectionString(""))
	assert.Error(t, Set(InsightToken, ""))
}

func TestDelete(t *testing.T) {
	gokeyring.MockInit()

	require.NoError(t, SetConnectionString("postgres://tracker@localhost/innerlevel"))
	require.NoError(t, DeleteConnectionString())

	_, err := GetConnectionString()
	assert.ErrorIs(t, err, ErrNotFound)

	assert.ErrorIs(t, DeleteConnectionString(), ErrNotFound)
}

func TestParseEntry(t *testing.T) {
	tests := []struct {
		in      string
		want    Entry
		wantErr bool
	}{
		{in: "db", want: ConnectionString},
		{in: "database-connection", want: ConnectionString},
		{in: "insight", want: InsightToken},
		{in: "insight-token", want: InsightToken},
		{in: "password", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseEntry(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestIsAvailable(t *testing.T) {
	gokeyring.MockInit()
	assert.True(t, IsAvailable())
}
