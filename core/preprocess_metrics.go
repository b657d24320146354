package core

import "github.com/ethereum/go-ethereum/metrics"

var (
	preprocessTxMeter    = metrics.NewRegisteredMeter("shield/preprocess/tx", nil)
	preprocessFailMeter  = metrics.NewRegisteredMeter("shield/preprocess/fail", nil)
	senderCacheHitMeter  = metrics.NewRegisteredMeter("shield/preprocess/sender/hit", nil)
	senderCacheMissMeter = metrics.NewRegisteredMeter("shield/preprocess/sender/miss", nil)
	inputCacheHitMeter   = metrics.NewRegisteredMeter("shield/preprocess/input/hit", nil)
	inputCacheMissMeter  = metrics.NewRegisteredMeter("shield/preprocess/input/miss", nil)
	decryptTimer         = metrics.NewRegisteredTimer("shield/preprocess/decrypt", nil)
)
