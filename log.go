package sphincsplus

// import
import (
	"encoding/hex"
	"sync/atomic"

	"go.uber.org/zap"
)

var logger atomic.Pointer[zap.Logger]

func init() {
	logger.Store(zap.NewNop())
}

// SetLogger installs the logger used by key generation and signing. A nil
// logger disables logging. Secret material is never logged.
func SetLogger(l *zap.Logger) {
	if l == nil {
		l = zap.NewNop()
	}
	logger.Store(l.Named("sphincsplus"))
}

func log() *zap.Logger {
	return logger.Load()
}

func fingerprintField(pk *PublicKey) zap.Field {
	fp := pk.Fingerprint()
	return zap.String("fingerprint", hex.EncodeToString(fp[:8]))
}
