package pdf

import "go.uber.org/fx"

var Module = fx.Module("pdf",
	fx.Provide(NewRenderer),
)
