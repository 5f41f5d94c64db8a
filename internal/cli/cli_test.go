package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pendergraft/mintfactory/internal/artifacts"
	"github.com/pendergraft/mintfactory/internal/chains"
)

// isolate points HOME and the working directory at a temp dir and clears
// every source getServer and getAPIKey consult.
func isolate(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("HOME", dir)
	t.Setenv("MINTFACTORY_SERVER", "")
	t.Setenv("MINTFACTORY_API_KEY", "")
	t.Chdir(dir)

	oldCfg, oldServer, oldKey := cfgFile, server, apiKey
	cfgFile, server, apiKey = "", "", ""
	t.Cleanup(func() { cfgFile, server, apiKey = oldCfg, oldServer, oldKey })
	return dir
}

func changedSet(names ...string) func(string) bool {
	set := make(map[string]bool, len(names))
	for _, n := range names {
		set[n] = true
	}
	return func(name string) bool { return set[name] }
}

func TestMergeCollection(t *testing.T) {
	defaults := CollectionConfig{
		Name:       "From File",
		Symbol:     "FILE",
		MaxSupply:  100,
		RoyaltyBps: 250,
		MintPrice:  "0.1",
		Standard:   "ERC1155",
		Chain:      "POLYGON",
	}
	flags := CollectionConfig{
		Name:      "From Flag",
		MaxSupply: 0,
		Chain:     "BSC",
	}

	params, err := mergeCollection(defaults, flags, changedSet("name", "chain", "max-supply"))
	require.NoError(t, err)

	assert.Equal(t, "From Flag", params.Name)
	assert.Equal(t, "FILE", params.Symbol)
	assert.Equal(t, uint64(0), params.MaxSupply, "explicit zero flag wins")
	assert.Equal(t, uint16(250), params.RoyaltyBps)
	assert.Equal(t, "0.1", params.MintPrice)
	assert.Equal(t, artifacts.ERC1155, params.Standard)
	assert.Equal(t, "BSC", params.Chain)
}

func TestMergeCollection_Standard(t *testing.T) {
	params, err := mergeCollection(CollectionConfig{}, CollectionConfig{}, changedSet())
	require.NoError(t, err)
	assert.Equal(t, artifacts.ERC721, params.Standard)

	_, err = mergeCollection(CollectionConfig{}, CollectionConfig{Standard: "ERC20"}, changedSet("standard"))
	assert.Error(t, err)
}

func TestProjectConfig_Parse(t *testing.T) {
	dir := isolate(t)

	content := `server = "http://records:8080"

[collection]
name = "Pixel Foxes"
symbol = "PFOX"
base_token_uri = "ipfs://bafy/"
max_supply = 10000
royalty_bps = 500
mint_price = "0.05"
standard = "ERC721"
chain = "BSC"

[rpc]
56 = "https://bsc.example"
97 = "https://bsc-testnet.example"

[wallet]
mode = "jsonrpc"
url = "http://localhost:1248"
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "mintfactory.toml"), []byte(content), 0644))

	cfg, path, err := loadProjectConfig()
	require.NoError(t, err)
	assert.Equal(t, "mintfactory.toml", path)
	assert.Equal(t, "http://records:8080", cfg.Server)
	assert.Equal(t, "Pixel Foxes", cfg.Collection.Name)
	assert.Equal(t, uint64(10000), cfg.Collection.MaxSupply)
	assert.Equal(t, uint16(500), cfg.Collection.RoyaltyBps)
	assert.Equal(t, "ipfs://bafy/", cfg.Collection.BaseTokenURI)
	assert.Equal(t, "jsonrpc", cfg.Wallet.Mode)
	assert.Equal(t, "http://localhost:1248", cfg.Wallet.URL)

	endpoints, err := cfg.Endpoints()
	require.NoError(t, err)
	assert.Equal(t, map[int64]string{56: "https://bsc.example", 97: "https://bsc-testnet.example"}, endpoints)
}

func TestProjectConfig_FallbackName(t *testing.T) {
	dir := isolate(t)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "mf.toml"), []byte(`server = "http://short:1"`), 0644))

	cfg, path, err := loadProjectConfig()
	require.NoError(t, err)
	assert.Equal(t, "mf.toml", path)
	assert.Equal(t, "http://short:1", cfg.Server)
}

func TestProjectConfig_BadEndpoints(t *testing.T) {
	for _, key := range []string{"bsc", "0", "-5"} {
		cfg := &ProjectConfig{RPC: map[string]string{key: "https://x"}}
		_, err := cfg.Endpoints()
		assert.Error(t, err, key)
	}
}

func TestProjectConfig_Invalid(t *testing.T) {
	dir := isolate(t)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "mintfactory.toml"), []byte(`server = `), 0644))

	_, _, err := loadProjectConfig()
	assert.Error(t, err)
	assert.Nil(t, loadProjectConfigSilent())
}

func TestGetServer_Precedence(t *testing.T) {
	dir := isolate(t)

	assert.Equal(t, "http://localhost:8080", getServer())

	require.NoError(t, runConfigInitGlobal(&bytes.Buffer{}, "http://global:1", false))
	assert.Equal(t, "http://global:1", getServer())

	require.NoError(t, os.WriteFile(filepath.Join(dir, "mintfactory.toml"), []byte(`server = "http://project:1"`), 0644))
	assert.Equal(t, "http://project:1", getServer())

	t.Setenv("MINTFACTORY_SERVER", "http://env:1")
	assert.Equal(t, "http://env:1", getServer())

	server = "http://flag:1"
	assert.Equal(t, "http://flag:1", getServer())
}

func TestGetAPIKey_Precedence(t *testing.T) {
	isolate(t)

	assert.Empty(t, getAPIKey())

	require.NoError(t, saveCredential("http://localhost:8080", "mf_key_stored"))
	assert.Equal(t, "mf_key_stored", getAPIKey())

	t.Setenv("MINTFACTORY_API_KEY", "mf_key_env")
	assert.Equal(t, "mf_key_env", getAPIKey())

	apiKey = "mf_key_flag"
	assert.Equal(t, "mf_key_flag", getAPIKey())
}

func TestConfigInit(t *testing.T) {
	dir := isolate(t)
	var out bytes.Buffer

	require.NoError(t, runConfigInit(&out, "mintfactory.toml", "http://records:9000", "POLYGON", false))
	assert.Contains(t, out.String(), "Created mintfactory.toml")

	cfg, err := loadProjectConfigFromPath(filepath.Join(dir, "mintfactory.toml"))
	require.NoError(t, err)
	assert.Equal(t, "http://records:9000", cfg.Server)
	assert.Equal(t, "POLYGON", cfg.Collection.Chain)
	assert.Equal(t, "ERC721", cfg.Collection.Standard)
	assert.Equal(t, "keyed", cfg.Wallet.Mode)

	err = runConfigInit(&out, "mintfactory.toml", "http://other", "BSC", false)
	assert.ErrorContains(t, err, "already exists")

	require.NoError(t, runConfigInit(&out, "mintfactory.toml", "http://other", "BSC", true))
	cfg, err = loadProjectConfigFromPath("mintfactory.toml")
	require.NoError(t, err)
	assert.Equal(t, "http://other", cfg.Server)
}

func TestConfigInit_ExistingShortName(t *testing.T) {
	dir := isolate(t)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "mf.toml"), nil, 0644))

	err := runConfigInit(&bytes.Buffer{}, "mintfactory.toml", "http://x", "BSC", false)
	assert.ErrorContains(t, err, "mf.toml")
}

func TestConfigShow(t *testing.T) {
	isolate(t)
	t.Setenv("MINTFACTORY_API_KEY", "mf_key_abcdefghijklmnop")
	require.NoError(t, runConfigInit(&bytes.Buffer{}, "mintfactory.toml", "http://records:9000", "BSC", false))

	var out bytes.Buffer
	require.NoError(t, runConfigShow(&out))

	s := out.String()
	assert.Contains(t, s, "Loaded from: mintfactory.toml")
	assert.Contains(t, s, "collection.chain: BSC")
	assert.Contains(t, s, "Server:  http://records:9000")
	assert.Contains(t, s, "mf_key_a...mnop")
	assert.NotContains(t, s, "mf_key_abcdefghijklmnop")
	assert.Contains(t, s, "MINTFACTORY_PRIVATE_KEY=(not set)")
}

func TestChainsList(t *testing.T) {
	var out bytes.Buffer
	require.NoError(t, runChainsList(&out, chains.DefaultRegistry(), false))

	s := out.String()
	assert.Contains(t, s, "CHAIN ID")
	assert.Contains(t, s, "BNB Smart Chain")
	assert.Contains(t, s, "BSC Testnet (testnet)")
	assert.Contains(t, s, "BSC, BNB, BINANCE, BEP20")
}

func TestChainsList_JSON(t *testing.T) {
	var out bytes.Buffer
	require.NoError(t, runChainsList(&out, chains.DefaultRegistry(), true))
	assert.Contains(t, out.String(), `"chainId": 56`)
}

func TestChainsResolve(t *testing.T) {
	tests := []struct {
		alias     string
		want      string
		defaulted bool
	}{
		{alias: "bsc", want: "bsc -> BNB Smart Chain (56)"},
		{alias: "Polygon", want: "Polygon -> Polygon (137)"},
		{alias: "ETHERIUM", want: "ETHERIUM -> BSC Testnet (97)", defaulted: true},
	}

	for _, tt := range tests {
		t.Run(tt.alias, func(t *testing.T) {
			var out bytes.Buffer
			require.NoError(t, runChainsResolve(&out, chains.DefaultRegistry(), tt.alias))
			assert.Contains(t, out.String(), tt.want)
			assert.Equal(t, tt.defaulted, bytes.Contains(out.Bytes(), []byte("Warning")))
		})
	}
}

func TestChainArg(t *testing.T) {
	tests := []struct {
		in      string
		want    int64
		wantErr bool
	}{
		{in: "56", want: 56},
		{in: "BSC", want: 56},
		{in: "sepolia", want: 11155111},
		{in: "1abc", wantErr: true},
		{in: "0", wantErr: true},
		{in: "nowhere", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := chainArg(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestTruncateAddress(t *testing.T) {
	assert.Equal(t, "0x5FbD...0aa3", truncateAddress("0x5FbDB2315678afecb367f032d93F642f64180aa3"))
	assert.Equal(t, "0x1234", truncateAddress("0x1234"))
}

func TestOpenWallet_Errors(t *testing.T) {
	t.Setenv("MINTFACTORY_PRIVATE_KEY", "ac0974bec39a17e36ba4a6b4d238ff944bacb478cbed5efcae784d7bf4f2ff80")

	tests := []struct {
		name string
		opts walletOptions
		want string
	}{
		{name: "keyed without endpoints", opts: walletOptions{Mode: walletKeyed}, want: "RPC endpoint"},
		{name: "jsonrpc without url", opts: walletOptions{Mode: walletJSONRPC}, want: "needs a URL"},
		{name: "unknown mode", opts: walletOptions{Mode: "ledger"}, want: "unknown wallet mode"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := openWallet(t.Context(), tt.opts, discardLogger())
			assert.ErrorContains(t, err, tt.want)
		})
	}
}

func TestOpenWallet_Keyed(t *testing.T) {
	t.Setenv("MINTFACTORY_PRIVATE_KEY", "0xac0974bec39a17e36ba4a6b4d238ff944bacb478cbed5efcae784d7bf4f2ff80")

	w, closeFn, err := openWallet(t.Context(), walletOptions{Endpoints: map[int64]string{56: "http://127.0.0.1:1"}}, discardLogger())
	require.NoError(t, err)
	defer closeFn()

	addr, err := w.Account(t.Context())
	require.NoError(t, err)
	assert.Equal(t, "0xf39Fd6e51aad88F6F4ce6aB8827279cffFb92266", addr.Hex())
}
