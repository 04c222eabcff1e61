package notagen

import (
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCatalog_Lookup(t *testing.T) {
	assert := assert.New(t)

	c, err := ReadCatalog(strings.NewReader(testMoves), strings.NewReader(testCharacters))
	require.NoError(t, err)

	img, ok := c.LookupImage("df1")
	assert.True(ok)
	assert.Equal("R1_DF1.png", img)

	_, ok = c.LookupImage("UF4")
	assert.False(ok)

	name, ok := c.LookupDisplayName("heat")
	assert.True(ok)
	assert.Equal("Heat Burst", name)

	_, ok = c.LookupDisplayName("GHOST")
	assert.False(ok, "an empty display name is reported as missing")

	assert.Equal(5, c.Len())
	assert.Equal([]string{"Jin", "Kazuya"}, c.Characters())

	moves, ok := c.MovesForCharacter("Jin")
	assert.True(ok)
	assert.Equal([]string{"HEAT", "DF1"}, moves)

	moves[0] = "changed"
	again, _ := c.MovesForCharacter("Jin")
	assert.Equal("HEAT", again[0])

	_, ok = c.MovesForCharacter("Nobody")
	assert.False(ok)
}

func TestCatalog_HeaderAliasesAndMalformedRows(t *testing.T) {
	assert := assert.New(t)

	moves := "\ufeffImageFile;Token;DisplayName\n" +
		"R1_DF1.png;DF+1;Jab\n" +
		";B+2;No Image\n" +
		"R2_B2.png\n" +
		"R1_NEW.png;df+1;Newer Jab\n"
	chars := "Character;MoveTokens\nJin;DF1, DF1, HEAT\nNina;\n"

	c, err := ReadCatalog(strings.NewReader(moves), strings.NewReader(chars))
	require.NoError(t, err)

	img, ok := c.LookupImage("DF+1")
	assert.True(ok)
	assert.Equal("R1_NEW.png", img, "later duplicates overwrite earlier ones")
	assert.Equal(1, c.Len())
	assert.Equal(3, c.Skipped())

	moves2, _ := c.MovesForCharacter("Jin")
	assert.Equal([]string{"DF1", "HEAT"}, moves2)
	assert.Equal([]string{"Jin"}, c.Characters())
}

func TestCatalog_MissingColumn(t *testing.T) {
	_, err := ReadCatalog(strings.NewReader("Move;Name\nDF+1;Jab\n"), strings.NewReader(testCharacters))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "move table")

	_, err = ReadCatalog(strings.NewReader(testMoves), strings.NewReader(""))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "character table")
}

func TestCatalog_LoadMissingFile(t *testing.T) {
	cfg := newFixture(t)

	_, err := LoadCatalog(filepath.Join(cfg.Root, "missing.csv"), cfg.CharactersPath())
	assert.Error(t, err)

	c, err := LoadCatalog(cfg.MovesPath(), cfg.CharactersPath())
	require.NoError(t, err)
	assert.Equal(t, 5, c.Len())
}
