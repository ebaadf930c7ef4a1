package solana

// Default public endpoints of the clusters the arena runs on.
const (
	DevnetRPCURL       = "https://api.devnet.solana.com"
	GorbaganaRPCURL    = "https://rpc.gorbagana.wtf"
	GorbaganaWebsocket = "wss://rpc.gorbagana.wtf"
)
