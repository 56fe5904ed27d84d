package cloud

// providerRates holds per-provider monthly pricing in USD
type providerRates struct {
	vpnGatewayMonthly float64
	perGBTransfer     float64
	perConnectionHour float64
}

var rates = map[string]providerRates{
	ProviderAWS:   {36.00, 0.090, 0.05},
	ProviderAzure: {27.00, 0.087, 0.04},
	ProviderGCP:   {36.50, 0.085, 0.05},
}

// hoursPerMonth is the billing convention used by the major providers
const hoursPerMonth = 730

// CostEstimate is a monthly price breakdown in USD
type CostEstimate struct {
	Currency        string  `json:"currency"`
	VPNGateway      float64 `json:"vpnGateway"`
	DataTransfer    float64 `json:"dataTransfer"`
	ConnectionHours float64 `json:"connectionHours"`
	TotalMonthly    float64 `json:"totalMonthly"`
	TotalAnnual     float64 `json:"totalAnnual"`
}

// EstimateCost prices the VPN attachment for a provider at the given
// tunnel bandwidth, assuming 70% sustained utilization. Unknown providers
// fall back to AWS rates.
func EstimateCost(provider string, bandwidthMbps int) CostEstimate {
	r, ok := rates[provider]
	if !ok {
		r = rates[ProviderAWS]
	}

	// Mbps at 70% utilization over a billing month, expressed in GB
	monthlyGB := float64(bandwidthMbps) / 8 * 0.7 * hoursPerMonth * 3600 / 1000

	transfer := monthlyGB * r.perGBTransfer
	hours := hoursPerMonth * r.perConnectionHour
	monthly := r.vpnGatewayMonthly + transfer + hours

	return CostEstimate{
		Currency:        "USD",
		VPNGateway:      round2(r.vpnGatewayMonthly),
		DataTransfer:    round2(transfer),
		ConnectionHours: round2(hours),
		TotalMonthly:    round2(monthly),
		TotalAnnual:     round2(monthly * 12),
	}
}

func round2(v float64) float64 { return float64(int64(v*100+0.5)) / 100 }
