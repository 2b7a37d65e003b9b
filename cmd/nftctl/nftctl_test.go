package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
	"time"

	"nft-backend/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildMintRequests(t *testing.T) {
	dir := t.TempDir()
	a := filepath.Join(dir, "a.png")
	b := filepath.Join(dir, "b.png")
	require.NoError(t, os.WriteFile(a, []byte("aaa"), 0o600))
	require.NoError(t, os.WriteFile(b, []byte("bbb"), 0o600))

	reqs, err := buildMintRequests([]string{a, b}, []string{"First"}, nil)
	require.NoError(t, err)
	require.Len(t, reqs, 2)
	assert.Equal(t, "a.png", reqs[0].FileName)
	assert.Equal(t, "First", reqs[0].DisplayName)
	assert.Equal(t, []byte("bbb"), reqs[1].Asset)
	assert.Empty(t, reqs[1].DisplayName)

	_, err = buildMintRequests([]string{filepath.Join(dir, "missing.png")}, nil, nil)
	assert.Error(t, err)
}

func TestFilterByOwner(t *testing.T) {
	records := []models.TokenRecord{
		{Owner: "0xAbC0000000000000000000000000000000000001"},
		{Owner: "0x0000000000000000000000000000000000000002"},
	}
	out := filterByOwner(records, "0xabc0000000000000000000000000000000000001")
	require.Len(t, out, 1)
	assert.Equal(t, records[0].Owner, out[0].Owner)
}

func TestWriteMappingsCSV(t *testing.T) {
	var buf bytes.Buffer
	at := time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC)
	err := writeMappingsCSV(&buf, []mappingRow{{RecordID: "7", ChainID: "1", ContentRef: "ipfs://meta", CreatedAt: at}})
	require.NoError(t, err)
	assert.Equal(t,
		"record_id,chain_id,contract,content_ref,tx_hash,batch_id,owner,created_at\n7,1,,ipfs://meta,,,,2025-01-02T03:04:05Z\n",
		buf.String())
}

func TestRootCommandRegistersSubcommands(t *testing.T) {
	root := newRootCmd()
	for _, name := range []string{"serve", "mint", "gallery", "mappings"} {
		cmd, _, err := root.Find([]string{name})
		require.NoError(t, err)
		assert.Equal(t, name, cmd.Name())
	}
}
