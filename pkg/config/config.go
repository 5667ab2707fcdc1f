package config

import (
	"fmt"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"k8s.io/apimachinery/pkg/util/validation/field"
)

// Environment variable names for Airdrop Server configuration
const (
	EnvAirdropPort              = "AIRDROP_PORT"
	EnvAirdropChainID           = "AIRDROP_CHAIN_ID"
	EnvAirdropVerifyingContract = "AIRDROP_VERIFYING_CONTRACT"
	EnvAirdropMerkleFile        = "AIRDROP_MERKLE_FILE"
	EnvAirdropRPCURL            = "AIRDROP_RPC_URL"
	EnvAirdropTokenType         = "AIRDROP_TOKEN_TYPE"
	EnvAirdropTokenAddress      = "AIRDROP_TOKEN_ADDRESS"
	EnvAirdropReservePrivateKey = "AIRDROP_RESERVE_PRIVATE_KEY"
	EnvAirdropReserveFunding    = "AIRDROP_RESERVE_FUNDING"
	EnvAirdropPersistenceType   = "AIRDROP_PERSISTENCE_TYPE"
	EnvAirdropDataPath          = "AIRDROP_DATA_PATH"
	EnvAirdropRedisAddress      = "AIRDROP_REDIS_ADDRESS"
	EnvAirdropRedisPassword     = "AIRDROP_REDIS_PASSWORD"
	EnvAirdropRedisDB           = "AIRDROP_REDIS_DB"
	EnvAirdropNatsURL           = "AIRDROP_NATS_URL"
	EnvAirdropNatsSubject       = "AIRDROP_NATS_SUBJECT"
	EnvAirdropRateLimit         = "AIRDROP_RATE_LIMIT"
	EnvAirdropRateBurst         = "AIRDROP_RATE_BURST"
	EnvAirdropVerbose           = "AIRDROP_VERBOSE"
)

type ChainId uint

const (
	ChainId_EthereumMainnet ChainId = 1
	ChainId_EthereumSepolia ChainId = 11155111
	ChainId_EthereumAnvil   ChainId = 31337
)

type ChainName string

const (
	ChainName_EthereumMainnet ChainName = "mainnet"
	ChainName_EthereumSepolia ChainName = "sepolia"
	ChainName_EthereumAnvil   ChainName = "devnet"
)

var ChainIdToName = map[ChainId]ChainName{
	ChainId_EthereumMainnet: ChainName_EthereumMainnet,
	ChainId_EthereumSepolia: ChainName_EthereumSepolia,
	ChainId_EthereumAnvil:   ChainName_EthereumAnvil,
}
var ChainNameToId = map[ChainName]ChainId{
	ChainName_EthereumMainnet: ChainId_EthereumMainnet,
	ChainName_EthereumSepolia: ChainId_EthereumSepolia,
	ChainName_EthereumAnvil:   ChainId_EthereumAnvil,
}

func (c ChainId) BigInt() *big.Int {
	return new(big.Int).SetUint64(uint64(c))
}

type PersistenceType string

const (
	PersistenceType_Memory PersistenceType = "memory"
	PersistenceType_Badger PersistenceType = "badger"
	PersistenceType_Redis  PersistenceType = "redis"
)

type TokenType string

const (
	TokenType_Memory TokenType = "memory"
	TokenType_ERC20  TokenType = "erc20"
)

const (
	DefaultPort      = 8080
	DefaultRateLimit = 10.0
	DefaultRateBurst = 20
)

// AirdropServerConfig represents the complete configuration for an airdrop server
type AirdropServerConfig struct {
	Port int `json:"port"`

	// Chain configuration
	ChainID   ChainId   `json:"chain_id"`
	ChainName ChainName `json:"chain_name"`

	// VerifyingContract is the address bound into the EIP-712 domain
	VerifyingContract string `json:"verifying_contract"`

	// MerkleFile is the output of `airdropTool make-merkle`
	MerkleFile string `json:"merkle_file"`

	// Token configuration
	TokenType         TokenType `json:"token_type"`
	TokenAddress      string    `json:"token_address"`
	RpcUrl            string    `json:"rpc_url"`
	ReservePrivateKey string    `json:"-"`
	// ReserveFunding is minted into the reserve when TokenType is memory
	ReserveFunding string `json:"reserve_funding"`

	// Claim storage
	PersistenceType PersistenceType `json:"persistence_type"`
	DataPath        string          `json:"data_path"`
	RedisAddress    string          `json:"redis_address"`
	RedisPassword   string          `json:"-"`
	RedisDB         int             `json:"redis_db"`

	// Claimed event publishing, disabled when NatsURL is empty
	NatsURL     string `json:"nats_url"`
	NatsSubject string `json:"nats_subject"`

	// Claim endpoint rate limit, requests per second
	RateLimit float64 `json:"rate_limit"`
	RateBurst int     `json:"rate_burst"`

	Debug   bool `json:"debug"`
	Verbose bool `json:"verbose"`
}

// Validate validates the airdrop server configuration and fills in derived fields
func (c *AirdropServerConfig) Validate() error {
	var allErrors field.ErrorList

	if c.Port < 1 || c.Port > 65535 {
		allErrors = append(allErrors, field.Invalid(field.NewPath("port"), c.Port, "must be between 1-65535"))
	}

	chainName, exists := ChainIdToName[c.ChainID]
	if !exists {
		allErrors = append(allErrors, field.Invalid(field.NewPath("chainId"), c.ChainID, "unsupported chain ID, supported: "+GetSupportedChainIDsString()))
	} else {
		c.ChainName = chainName
	}

	if c.VerifyingContract == "" {
		allErrors = append(allErrors, field.Required(field.NewPath("verifyingContract"), "verifying contract address is required"))
	} else if !common.IsHexAddress(c.VerifyingContract) {
		allErrors = append(allErrors, field.Invalid(field.NewPath("verifyingContract"), c.VerifyingContract, "invalid address format"))
	}

	if c.MerkleFile == "" {
		allErrors = append(allErrors, field.Required(field.NewPath("merkleFile"), "merkle file is required"))
	}

	allErrors = append(allErrors, c.validateToken()...)
	allErrors = append(allErrors, c.validatePersistence()...)

	if c.RateLimit <= 0 {
		allErrors = append(allErrors, field.Invalid(field.NewPath("rateLimit"), c.RateLimit, "must be positive"))
	}
	if c.RateBurst < 1 {
		allErrors = append(allErrors, field.Invalid(field.NewPath("rateBurst"), c.RateBurst, "must be at least 1"))
	}

	if len(allErrors) > 0 {
		return allErrors.ToAggregate()
	}
	return nil
}

func (c *AirdropServerConfig) validateToken() field.ErrorList {
	var allErrors field.ErrorList
	path := field.NewPath("token")

	if c.TokenAddress == "" {
		allErrors = append(allErrors, field.Required(path.Child("address"), "token address is required"))
	} else if !common.IsHexAddress(c.TokenAddress) {
		allErrors = append(allErrors, field.Invalid(path.Child("address"), c.TokenAddress, "invalid address format"))
	}

	switch c.TokenType {
	case TokenType_Memory:
		if c.ReserveFunding != "" {
			if v, ok := new(big.Int).SetString(c.ReserveFunding, 10); !ok || v.Sign() < 0 {
				allErrors = append(allErrors, field.Invalid(path.Child("reserveFunding"), c.ReserveFunding, "must be a non-negative decimal integer"))
			}
		}
	case TokenType_ERC20:
		if c.RpcUrl == "" {
			allErrors = append(allErrors, field.Required(path.Child("rpcUrl"), "rpc url is required for erc20 tokens"))
		}
		key := strings.TrimPrefix(c.ReservePrivateKey, "0x")
		if key == "" {
			allErrors = append(allErrors, field.Required(path.Child("reservePrivateKey"), "reserve private key is required for erc20 tokens"))
		} else if len(key) != 64 { // 64 hex chars
			allErrors = append(allErrors, field.Invalid(path.Child("reservePrivateKey"), "<redacted>",
				fmt.Sprintf("must be 32 bytes (64 hex chars), got %d chars", len(key))))
		}
	default:
		allErrors = append(allErrors, field.NotSupported(path.Child("type"), c.TokenType,
			[]string{string(TokenType_Memory), string(TokenType_ERC20)}))
	}
	return allErrors
}

func (c *AirdropServerConfig) validatePersistence() field.ErrorList {
	var allErrors field.ErrorList
	path := field.NewPath("persistence")

	switch c.PersistenceType {
	case PersistenceType_Memory:
	case PersistenceType_Badger:
		if c.DataPath == "" {
			allErrors = append(allErrors, field.Required(path.Child("dataPath"), "data path is required for badger persistence"))
		}
	case PersistenceType_Redis:
		if c.RedisAddress == "" {
			allErrors = append(allErrors, field.Required(path.Child("redisAddress"), "redis address is required for redis persistence"))
		}
		if c.RedisDB < 0 {
			allErrors = append(allErrors, field.Invalid(path.Child("redisDb"), c.RedisDB, "must not be negative"))
		}
	default:
		allErrors = append(allErrors, field.NotSupported(path.Child("type"), c.PersistenceType,
			[]string{string(PersistenceType_Memory), string(PersistenceType_Badger), string(PersistenceType_Redis)}))
	}
	return allErrors
}

// GetSupportedChainIDs returns all supported chain IDs
func GetSupportedChainIDs() []ChainId {
	return []ChainId{
		ChainId_EthereumMainnet,
		ChainId_EthereumSepolia,
		ChainId_EthereumAnvil,
	}
}

// GetSupportedChainIDsString returns supported chain IDs as strings for CLI help
func GetSupportedChainIDsString() string {
	return fmt.Sprintf("%d (mainnet), %d (sepolia), %d (anvil)",
		ChainId_EthereumMainnet, ChainId_EthereumSepolia, ChainId_EthereumAnvil)
}
