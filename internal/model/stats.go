package model

// PoolToken is one side of a pool.
type PoolToken struct {
	Contract string `json:"contract"`
	Symbol   string `json:"symbol"`
	Reserve  string `json:"reserve"`
}

// PoolStats tracks one liquidity pool.
type PoolStats struct {
	Contract     string    `json:"contract"`
	Name         string    `json:"name"`
	Token0       PoolToken `json:"token0"`
	Token1       PoolToken `json:"token1"`
	TVLUSD       float64   `json:"tvlUsd"`
	Volume24hUSD float64   `json:"volume24hUsd"`
	Fees24hUSD   float64   `json:"fees24hUsd"`
	APR          float64   `json:"apr"`
	Price        float64   `json:"price"`
	PrevPrice    float64   `json:"prevPrice"`
	FirstSeen    int64     `json:"firstSeen"`
	LastUpdated  int64     `json:"lastUpdated"`
}

// TokenStats tracks swap volume for one token.
type TokenStats struct {
	Contract     string  `json:"contract"`
	Symbol       string  `json:"symbol"`
	Volume24hUSD float64 `json:"volume24hUsd"`
	SwapCount    uint64  `json:"swapCount"`
	FirstSeen    int64   `json:"firstSeen"`
}

// DashboardStats summarizes the trailing 24h window.
type DashboardStats struct {
	TotalTransactions24h int     `json:"totalTransactions24h"`
	ActiveWallets24h     int     `json:"activeWallets24h"`
	TotalVolume24h       float64 `json:"totalVolume24h"`
	TotalTVL             float64 `json:"totalTvl"`
	Swaps24h             int     `json:"swaps24h"`
	LiquidityEvents24h   int     `json:"liquidityEvents24h"`
	Transfers24h         int     `json:"transfers24h"`
	WhaleEvents24h       int     `json:"whaleEvents24h"`
	PoolCount            int     `json:"poolCount"`
	TokenCount           int     `json:"tokenCount"`
}

// VolumeBucket is swap volume for one fixed-width period.
type VolumeBucket struct {
	Start     int64   `json:"start"`
	VolumeUSD float64 `json:"volumeUsd"`
	Count     int     `json:"count"`
}
