package chains

// builtin is the static chain table. Chain IDs follow chainlist.org.
var builtin = []ChainDescriptor{
	{ChainID: 1, DisplayName: "Ethereum", Aliases: []string{"ETH", "ETHEREUM", "MAINNET"}, NativeSymbol: "ETH"},
	{ChainID: 10, DisplayName: "Optimism", Aliases: []string{"OP", "OPTIMISM"}, NativeSymbol: "ETH"},
	{ChainID: 56, DisplayName: "BNB Smart Chain", Aliases: []string{"BSC", "BNB", "BINANCE", "BEP20"}, NativeSymbol: "BNB"},
	{ChainID: 97, DisplayName: "BSC Testnet", Aliases: []string{"BSC_TESTNET", "BSCTEST", "TBNB"}, NativeSymbol: "tBNB", Testnet: true},
	{ChainID: 137, DisplayName: "Polygon", Aliases: []string{"POLYGON", "MATIC", "POL"}, NativeSymbol: "POL"},
	{ChainID: 250, DisplayName: "Fantom", Aliases: []string{"FTM", "FANTOM"}, NativeSymbol: "FTM"},
	{ChainID: 8453, DisplayName: "Base", Aliases: []string{"BASE"}, NativeSymbol: "ETH"},
	{ChainID: 42161, DisplayName: "Arbitrum One", Aliases: []string{"ARB", "ARBITRUM"}, NativeSymbol: "ETH"},
	{ChainID: 43114, DisplayName: "Avalanche C-Chain", Aliases: []string{"AVAX", "AVALANCHE"}, NativeSymbol: "AVAX"},
	{ChainID: 80002, DisplayName: "Polygon Amoy", Aliases: []string{"AMOY", "POLYGON_AMOY"}, NativeSymbol: "POL", Testnet: true},
	{ChainID: 11155111, DisplayName: "Sepolia", Aliases: []string{"SEPOLIA", "ETH_SEPOLIA"}, NativeSymbol: "ETH", Testnet: true},
}

var defaultRegistry = NewRegistry(DefaultChainID, builtin...)

// DefaultRegistry returns the registry of built-in chains.
func DefaultRegistry() *Registry {
	return defaultRegistry
}
