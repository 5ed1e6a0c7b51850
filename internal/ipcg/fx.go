package ipcg

import (
	calldetaildomain "github.com/railzwaylabs/mediation/internal/calldetail/domain"
	"go.uber.org/fx"
)

var Module = fx.Module("ipcg.splitter",
	fx.Provide(func() calldetaildomain.Splitter { return NewSplitter(nil) }),
)
