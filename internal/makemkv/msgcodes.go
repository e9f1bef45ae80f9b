package makemkv

import "log/slog"

// MakeMKV MSG codes seen on stdout in --robot mode. Codes >= 5000 are
// disc/rip-level messages; codes below that are general I/O chatter.
const (
	MsgReadError         = 2003 // read error on the source disc
	MsgWriteError        = 2019 // write error on the destination
	MsgTitleSaveFailed   = 5003 // single title save failed
	MsgRipCompleted      = 5004 // "N titles saved, M failed"
	MsgDiscOpenError     = 5010 // can't open disc
	MsgTooOld            = 5021 // application too old
	MsgRipSummary        = 5037 // copy complete summary
	MsgEvalPeriodExpired = 5052 // eval period warning
	MsgSharewareExpired  = 5055 // shareware expired
)

var errorCodes = map[int]struct{}{
	MsgReadError:        {},
	MsgWriteError:       {},
	MsgTitleSaveFailed:  {},
	MsgDiscOpenError:    {},
	MsgTooOld:           {},
	MsgSharewareExpired: {},
}

// MessageLevel maps a MSG code to the log level its text deserves. Disc-level
// messages are kept visible; everything else is debug noise.
func MessageLevel(code int) slog.Level {
	if _, ok := errorCodes[code]; ok {
		return slog.LevelError
	}
	if code == MsgEvalPeriodExpired {
		return slog.LevelWarn
	}
	if code >= 5000 {
		return slog.LevelInfo
	}
	return slog.LevelDebug
}

// IsFailure reports whether a MSG code indicates the operation cannot
// succeed.
func IsFailure(code int) bool {
	_, ok := errorCodes[code]
	return ok
}
