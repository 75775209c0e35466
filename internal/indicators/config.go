package indicators

// Line holds the shared per-line display settings every indicator config
// carries explicitly; no field is ever optional.
type Line struct {
	Enabled bool    `mapstructure:"enabled"`
	Color   string  `mapstructure:"color"`
	Width   float64 `mapstructure:"width"`
}

// MAConfig configures one moving-average overlay line.
type MAConfig struct {
	Line   `mapstructure:",squash"`
	Kind   string      `mapstructure:"kind"` // "sma", "ema" or "wma"
	Period int         `mapstructure:"period"`
	Source PriceSource `mapstructure:"source"`
}

// BollingerConfig configures the Bollinger Bands overlay.
type BollingerConfig struct {
	Line   `mapstructure:",squash"`
	Period int     `mapstructure:"period"`
	Mult   float64 `mapstructure:"mult"`
}

// SARConfig configures the Parabolic SAR overlay.
type SARConfig struct {
	Line    `mapstructure:",squash"`
	Step    float64 `mapstructure:"step"`
	MaxStep float64 `mapstructure:"max_step"`
}

// SuperTrendConfig configures the SuperTrend overlay.
type SuperTrendConfig struct {
	Line   `mapstructure:",squash"`
	Period int     `mapstructure:"period"`
	Mult   float64 `mapstructure:"mult"`
}

// MACDConfig configures the MACD sub-pane.
type MACDConfig struct {
	Line   `mapstructure:",squash"`
	Fast   int `mapstructure:"fast"`
	Slow   int `mapstructure:"slow"`
	Signal int `mapstructure:"signal"`
}

// PeriodConfig configures any single-period oscillator (RSI, TRIX, CCI,
// Williams %R, MFI, EMV by period).
type PeriodConfig struct {
	Line   `mapstructure:",squash"`
	Period int `mapstructure:"period"`
}

// KDJConfig configures the KDJ sub-pane.
type KDJConfig struct {
	Line    `mapstructure:",squash"`
	KPeriod int `mapstructure:"k_period"`
	DPeriod int `mapstructure:"d_period"`
}

// StochRSIConfig configures the StochRSI sub-pane.
type StochRSIConfig struct {
	Line        `mapstructure:",squash"`
	RSIPeriod   int `mapstructure:"rsi_period"`
	StochPeriod int `mapstructure:"stoch_period"`
	SmoothK     int `mapstructure:"smooth_k"`
	SmoothD     int `mapstructure:"smooth_d"`
}

// MTMConfig configures the momentum sub-pane.
type MTMConfig struct {
	Line   `mapstructure:",squash"`
	Period int         `mapstructure:"period"`
	Source PriceSource `mapstructure:"source"`
}

// EMVConfig configures the EMV sub-pane.
type EMVConfig struct {
	Line    `mapstructure:",squash"`
	Period  int     `mapstructure:"period"`
	Divisor float64 `mapstructure:"divisor"`
}

// Config is the full typed indicator configuration for one chart. Every
// indicator has an explicit record; disabled records are simply skipped
// at registration.
type Config struct {
	MA1        MAConfig         `mapstructure:"ma1"`
	MA2        MAConfig         `mapstructure:"ma2"`
	MA3        MAConfig         `mapstructure:"ma3"`
	Bollinger  BollingerConfig  `mapstructure:"bollinger"`
	VWAP       Line             `mapstructure:"vwap"`
	SAR        SARConfig        `mapstructure:"sar"`
	SuperTrend SuperTrendConfig `mapstructure:"supertrend"`
	MACD       MACDConfig       `mapstructure:"macd"`
	RSI        PeriodConfig     `mapstructure:"rsi"`
	TRIX       PeriodConfig     `mapstructure:"trix"`
	OBV        Line             `mapstructure:"obv"`
	CCI        PeriodConfig     `mapstructure:"cci"`
	WR         PeriodConfig     `mapstructure:"wr"`
	MFI        PeriodConfig     `mapstructure:"mfi"`
	KDJ        KDJConfig        `mapstructure:"kdj"`
	StochRSI   StochRSIConfig   `mapstructure:"stochrsi"`
	DMI        PeriodConfig     `mapstructure:"dmi"`
	MTM        MTMConfig        `mapstructure:"mtm"`
	EMV        EMVConfig        `mapstructure:"emv"`
	MAVOL1     PeriodConfig     `mapstructure:"mavol1"`
	MAVOL2     PeriodConfig     `mapstructure:"mavol2"`
}

// DefaultConfig returns the standard indicator parameter set with every
// indicator disabled.
func DefaultConfig() Config {
	return Config{
		MA1:        MAConfig{Kind: "sma", Period: 7, Source: SourceClose, Line: Line{Color: "#ff9800", Width: 1}},
		MA2:        MAConfig{Kind: "sma", Period: 25, Source: SourceClose, Line: Line{Color: "#e91e63", Width: 1}},
		MA3:        MAConfig{Kind: "sma", Period: 99, Source: SourceClose, Line: Line{Color: "#9c27b0", Width: 1}},
		Bollinger:  BollingerConfig{Period: 20, Mult: 2, Line: Line{Color: "#2196f3", Width: 1}},
		VWAP:       Line{Color: "#ffc107", Width: 1},
		SAR:        SARConfig{Step: 0.02, MaxStep: 0.2, Line: Line{Color: "#00bcd4", Width: 1}},
		SuperTrend: SuperTrendConfig{Period: 10, Mult: 3, Line: Line{Color: "#4caf50", Width: 1}},
		MACD:       MACDConfig{Fast: 12, Slow: 26, Signal: 9, Line: Line{Color: "#2962ff", Width: 1}},
		RSI:        PeriodConfig{Period: 14, Line: Line{Color: "#7e57c2", Width: 1}},
		TRIX:       PeriodConfig{Period: 12, Line: Line{Color: "#26a69a", Width: 1}},
		OBV:        Line{Color: "#78909c", Width: 1},
		CCI:        PeriodConfig{Period: 20, Line: Line{Color: "#ef5350", Width: 1}},
		WR:         PeriodConfig{Period: 14, Line: Line{Color: "#8d6e63", Width: 1}},
		MFI:        PeriodConfig{Period: 14, Line: Line{Color: "#42a5f5", Width: 1}},
		KDJ:        KDJConfig{KPeriod: 9, DPeriod: 3, Line: Line{Color: "#ab47bc", Width: 1}},
		StochRSI:   StochRSIConfig{RSIPeriod: 14, StochPeriod: 14, SmoothK: 3, SmoothD: 3, Line: Line{Color: "#ffa726", Width: 1}},
		DMI:        PeriodConfig{Period: 14, Line: Line{Color: "#66bb6a", Width: 1}},
		MTM:        MTMConfig{Period: 10, Source: SourceClose, Line: Line{Color: "#ec407a", Width: 1}},
		EMV:        EMVConfig{Period: 14, Divisor: 10000, Line: Line{Color: "#5c6bc0", Width: 1}},
		MAVOL1:     PeriodConfig{Period: 5, Line: Line{Color: "#03a9f4", Width: 2}},
		MAVOL2:     PeriodConfig{Period: 10, Line: Line{Color: "#e91e63", Width: 2}},
	}
}

// BuildEngine registers every enabled indicator from the config into a
// fresh engine.
func BuildEngine(workers int, cfg Config) *Engine {
	e := NewEngine(workers)

	registerMA := func(c MAConfig) {
		if !c.Enabled {
			return
		}
		switch c.Kind {
		case "ema":
			e.RegisterIndicator(&EMA{period: c.Period, source: c.Source})
		case "wma":
			e.RegisterIndicator(&WMA{period: c.Period, source: c.Source})
		default:
			e.RegisterIndicator(&SMA{period: c.Period, source: c.Source})
		}
	}
	registerMA(cfg.MA1)
	registerMA(cfg.MA2)
	registerMA(cfg.MA3)

	if cfg.Bollinger.Enabled {
		e.RegisterMultiIndicator(NewBollinger(cfg.Bollinger.Period, cfg.Bollinger.Mult))
	}
	if cfg.VWAP.Enabled {
		e.RegisterVolumeIndicator(NewVWAP())
	}
	if cfg.SAR.Enabled {
		e.RegisterIndicator(NewParabolicSAR(cfg.SAR.Step, cfg.SAR.MaxStep))
	}
	if cfg.SuperTrend.Enabled {
		e.RegisterIndicator(NewSuperTrend(cfg.SuperTrend.Period, cfg.SuperTrend.Mult))
	}
	if cfg.MACD.Enabled {
		e.RegisterMultiIndicator(NewMACD(cfg.MACD.Fast, cfg.MACD.Slow, cfg.MACD.Signal))
	}
	if cfg.RSI.Enabled {
		e.RegisterIndicator(NewRSI(cfg.RSI.Period))
	}
	if cfg.TRIX.Enabled {
		e.RegisterIndicator(NewTRIX(cfg.TRIX.Period))
	}
	if cfg.OBV.Enabled {
		e.RegisterVolumeIndicator(NewOBV())
	}
	if cfg.CCI.Enabled {
		e.RegisterIndicator(NewCCI(cfg.CCI.Period))
	}
	if cfg.WR.Enabled {
		e.RegisterIndicator(NewWilliamsR(cfg.WR.Period))
	}
	if cfg.MFI.Enabled {
		e.RegisterVolumeIndicator(NewMFI(cfg.MFI.Period))
	}
	if cfg.KDJ.Enabled {
		e.RegisterMultiIndicator(NewKDJ(cfg.KDJ.KPeriod, cfg.KDJ.DPeriod))
	}
	if cfg.StochRSI.Enabled {
		e.RegisterMultiIndicator(NewStochRSI(cfg.StochRSI.RSIPeriod, cfg.StochRSI.StochPeriod, cfg.StochRSI.SmoothK, cfg.StochRSI.SmoothD))
	}
	if cfg.DMI.Enabled {
		e.RegisterMultiIndicator(NewDMI(cfg.DMI.Period))
	}
	if cfg.MTM.Enabled {
		e.RegisterIndicator(NewMomentum(cfg.MTM.Period, cfg.MTM.Source))
	}
	if cfg.EMV.Enabled {
		e.RegisterVolumeIndicator(NewEMV(cfg.EMV.Period, cfg.EMV.Divisor))
	}
	if cfg.MAVOL1.Enabled {
		e.RegisterVolumeIndicator(NewVolumeSMA(cfg.MAVOL1.Period))
	}
	if cfg.MAVOL2.Enabled {
		e.RegisterVolumeIndicator(NewVolumeSMA(cfg.MAVOL2.Period))
	}

	return e
}
