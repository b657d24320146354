package core

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/VictoriaMetrics/fastcache"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/log"
	lru "github.com/hashicorp/golang-lru"
	"github.com/tos-network/gshield/core/secret"
	"github.com/tos-network/gshield/core/types"
	"github.com/tos-network/gshield/crypto/shield"
	"github.com/tos-network/gshield/params"
	"golang.org/x/sync/errgroup"
)

var errBatchFieldsLength = errors.New("secret data list does not match transaction list")

// PreprocessConfig are the configuration parameters of the shielded
// transaction preprocessor.
type PreprocessConfig struct {
	SenderCacheSize   int  // Number of recovered senders kept in memory
	InputCacheBytes   int  // Memory allowance for decrypted call inputs
	VerifyCommitments bool // Whether supplied secret data must be checked
	Workers           int  // Maximum number of concurrent batch workers
}

// DefaultPreprocessConfig contains the default configurations for the
// preprocessor.
var DefaultPreprocessConfig = PreprocessConfig{
	SenderCacheSize:   4096,
	InputCacheBytes:   32 * 1024 * 1024,
	VerifyCommitments: true,
	Workers:           8,
}

// sanitize checks the provided user configurations and changes anything that's
// unreasonable or unworkable.
func (config *PreprocessConfig) sanitize() PreprocessConfig {
	conf := *config
	if conf.SenderCacheSize < 1 {
		log.Warn("Sanitizing invalid preprocessor sender cache", "provided", conf.SenderCacheSize, "updated", DefaultPreprocessConfig.SenderCacheSize)
		conf.SenderCacheSize = DefaultPreprocessConfig.SenderCacheSize
	}
	if conf.InputCacheBytes < 1 {
		log.Warn("Sanitizing invalid preprocessor input cache", "provided", conf.InputCacheBytes, "updated", DefaultPreprocessConfig.InputCacheBytes)
		conf.InputCacheBytes = DefaultPreprocessConfig.InputCacheBytes
	}
	if conf.Workers < 1 {
		log.Warn("Sanitizing invalid preprocessor worker count", "provided", conf.Workers, "updated", DefaultPreprocessConfig.Workers)
		conf.Workers = DefaultPreprocessConfig.Workers
	}
	return conf
}

// PreparedTx is a decoded shielded transaction ready for execution.
type PreparedTx struct {
	Tx    *types.Transaction
	From  common.Address
	Input []byte // decrypted call input
}

// Preprocessor turns raw shielded transactions into executable form: it
// decodes the envelope, checks the chain, recovers the sender, decrypts the
// call input and authenticates any supplied secret data.
//
// Preprocessor is safe for concurrent use. Every call decodes its own
// transaction, so secret element caches are never shared between goroutines.
type Preprocessor struct {
	config PreprocessConfig
	chain  *params.ChainConfig
	signer types.Signer
	cipher shield.PayloadCipher

	senders *lru.ARCCache    // tx hash -> common.Address
	inputs  *fastcache.Cache // tx hash -> marker byte + decrypted input

	log log.Logger
}

// NewPreprocessor creates a preprocessor for the given chain.
func NewPreprocessor(config PreprocessConfig, chain *params.ChainConfig, c shield.PayloadCipher) (*Preprocessor, error) {
	if err := chain.CheckConfig(); err != nil {
		return nil, err
	}
	config = (&config).sanitize()

	senders, err := lru.NewARC(config.SenderCacheSize)
	if err != nil {
		return nil, err
	}
	return &Preprocessor{
		config:  config,
		chain:   chain,
		signer:  types.LatestSigner(chain),
		cipher:  c,
		senders: senders,
		inputs:  fastcache.New(config.InputCacheBytes),
		log:     log.New("module", "preprocess", "chainid", chain.ChainID),
	}, nil
}

// Prepare processes a single encoded transaction. fields may be nil when no
// secret data accompanies the call.
func (p *Preprocessor) Prepare(raw []byte, fields *secret.CallFields) (*PreparedTx, error) {
	prepared, err := p.prepare(raw, fields)
	if err != nil {
		preprocessFailMeter.Mark(1)
		return nil, err
	}
	preprocessTxMeter.Mark(1)
	return prepared, nil
}

func (p *Preprocessor) prepare(raw []byte, fields *secret.CallFields) (*PreparedTx, error) {
	tx, err := types.DecodeEnvelope(raw)
	if err != nil {
		return nil, fmt.Errorf("decode: %w", err)
	}
	if tx.ChainId() != p.chain.ChainID {
		return nil, fmt.Errorf("%w: have %d want %d", types.ErrInvalidChainId, tx.ChainId(), p.chain.ChainID)
	}
	hash := tx.Hash()

	from, err := p.sender(tx)
	if err != nil {
		return nil, err
	}
	input, err := p.input(tx)
	if err != nil {
		p.log.Debug("Failed to decrypt shielded input", "hash", hash, "err", err)
		return nil, err
	}
	if p.config.VerifyCommitments && fields != nil && len(fields.SecretData) > 0 {
		if err := secret.Verify(fields.SecretData, input); err != nil {
			p.log.Debug("Rejected shielded call", "hash", hash, "err", err)
			return nil, err
		}
	}
	p.log.Trace("Prepared shielded transaction", "hash", hash, "from", from, "input", len(input))
	return &PreparedTx{Tx: tx, From: from, Input: input}, nil
}

func (p *Preprocessor) sender(tx *types.Transaction) (common.Address, error) {
	hash := tx.Hash()
	if cached, ok := p.senders.Get(hash); ok {
		senderCacheHitMeter.Mark(1)
		return cached.(common.Address), nil
	}
	senderCacheMissMeter.Mark(1)
	from, err := types.Sender(p.signer, tx)
	if err != nil {
		return common.Address{}, err
	}
	p.senders.Add(hash, from)
	return from, nil
}

func (p *Preprocessor) input(tx *types.Transaction) ([]byte, error) {
	hash := tx.Hash()
	if cached := p.inputs.GetBig(nil, hash[:]); len(cached) > 0 {
		inputCacheHitMeter.Mark(1)
		tx.CacheInput(cached[1:])
		return cached[1:], nil
	}
	inputCacheMissMeter.Mark(1)

	start := time.Now()
	input, err := tx.DecryptInput(p.cipher)
	if err != nil {
		return nil, err
	}
	decryptTimer.UpdateSince(start)
	p.inputs.SetBig(hash[:], append([]byte{1}, input...))
	return input, nil
}

// PrepareBatch processes a list of encoded transactions concurrently. fields
// is either nil or parallel to raws. The first failure cancels the batch.
func (p *Preprocessor) PrepareBatch(ctx context.Context, raws [][]byte, fields []*secret.CallFields) ([]*PreparedTx, error) {
	if fields != nil && len(fields) != len(raws) {
		return nil, fmt.Errorf("%w: %d transactions, %d entries", errBatchFieldsLength, len(raws), len(fields))
	}
	var (
		results = make([]*PreparedTx, len(raws))
		g, gctx = errgroup.WithContext(ctx)
	)
	g.SetLimit(p.config.Workers)
	for i := range raws {
		i := i
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			var f *secret.CallFields
			if fields != nil {
				f = fields[i]
			}
			prepared, err := p.Prepare(raws[i], f)
			if err != nil {
				return fmt.Errorf("tx %d: %w", i, err)
			}
			results[i] = prepared
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}
