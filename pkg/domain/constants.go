package domain

// XLMToken is the wrapped native asset contract per network. The reference
// pricing graph is anchored on it: price(token, USD) goes through
// price(token, XLM) × price(XLM, USD).
var XLMToken = map[Network]TokenType{
	NetworkMainnet: {
		Contract: "CAS3J7GYLGXMF6TDJBBYYSE3HQ6BBSMLNUQ34T6TZMYMW2EVH34XOWMA",
		Name:     "StellarLumens",
		Code:     "XLM",
		Icon:     "https://stellarchain.io/img/xlm.316d17cc.png",
		Decimals: 7,
		Domain:   "stellar.org",
	},
	NetworkTestnet: {
		Contract: "CDLZFC3SYJYDZT7K67VZ75HPJVIEUVNIXF47ZG2FB2RMQQVU2HHGCYSC",
		Name:     "StellarLumens",
		Code:     "XLM",
		Icon:     "https://stellarchain.io/img/xlm.316d17cc.png",
		Decimals: 7,
		Domain:   "stellar.org",
	},
}

// SoroswapFactory holds the default factory contract addresses. Overridable
// from the command line for custom deployments.
var SoroswapFactory = map[Network]string{
	NetworkMainnet: "CA4HEQTL2WPEUYKYKCDOHCDNIV4QHNJ7EL4J4NQ6VADP7SYHVRYZ7AW2",
	NetworkTestnet: "CCXDHFYFBQ4WRG26X4SGWE63UPY7QEKBMD3HRRNGIH5EMDGGMYN7VWFD",
}

// SoroswapRouter holds the default router contract addresses. The router is
// the emitter of the add/remove/swap events the aggregator consumes.
var SoroswapRouter = map[Network]string{
	NetworkMainnet: "CAG5LRYQ5JVEUI5TEID72EYOVX44TTUJT5BQR2J6J77FH65PCCFAJDDH",
	NetworkTestnet: "CDGHOS7DDZ7DB24J7TMFDEAIR7LS7GLMT5J5KEZMUF6MSX5BFHCXQIB3",
}

// USDCode is the token-list code of the reference stablecoin.
const USDCode = "USDC"
