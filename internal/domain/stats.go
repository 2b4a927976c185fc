package domain

// EngineStats is the aggregate trading state reported to callers.
// OpenPnL, TotalPnL and ROIPercent are derived on demand; the rest are
// maintained incrementally by the engine.
type EngineStats struct {
	Positions     int     `json:"positions"`
	TotalInvested float64 `json:"total_invested"`
	OpenPnL       float64 `json:"open_pnl"`
	RealizedPnL   float64 `json:"realized_pnl"`
	TotalPnL      float64 `json:"total_pnl"`
	ROIPercent    float64 `json:"roi_percent"`
}
