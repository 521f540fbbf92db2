package main

import (
	"math"

	"github.com/banshee-data/lidarcal/internal/polarization"
	"github.com/banshee-data/lidarcal/internal/telecover"
)

// Summaries replace NaN by null so they can be encoded as JSON.

type pairSummary struct {
	Pair       string   `json:"pair"`
	Error      string   `json:"error,omitempty"`
	EtaFSM45   *float64 `json:"eta_f_s_m45,omitempty"`
	EtaFSP45   *float64 `json:"eta_f_s_p45,omitempty"`
	EtaFS      *float64 `json:"eta_f_s,omitempty"`
	EtaS       *float64 `json:"eta_s,omitempty"`
	Eta        *float64 `json:"eta,omitempty"`
	DeltaS     *float64 `json:"delta_s,omitempty"`
	DeltaC     *float64 `json:"delta_c,omitempty"`
	Delta      *float64 `json:"delta,omitempty"`
	DeltaM     *float64 `json:"delta_m,omitempty"`
	Psi        *float64 `json:"psi,omitempty"`
	EpsilonDeg *float64 `json:"epsilon_deg,omitempty"`
	Kappa      *float64 `json:"kappa,omitempty"`
}

type polarizationSummary struct {
	RunID     string        `json:"run_id"`
	Processor string        `json:"processor"`
	Pairs     []pairSummary `json:"pairs"`
}

func summarizePolarization(r *polarization.Report) polarizationSummary {
	out := polarizationSummary{RunID: r.RunID, Processor: r.Processor}
	for _, res := range r.Results {
		s := pairSummary{Pair: res.Pair.Name()}
		if res.Err != nil {
			s.Error = res.Err.Error()
			out.Pairs = append(out.Pairs, s)
			continue
		}
		s.EtaFSM45 = num(res.EtaFSM45)
		s.EtaFSP45 = num(res.EtaFSP45)
		s.EtaFS = num(res.EtaFS)
		s.EtaS = num(res.EtaS)
		s.Eta = num(res.Eta)
		s.DeltaS = num(res.DeltaS)
		s.DeltaC = num(res.DeltaC)
		s.Delta = num(res.Delta)
		s.DeltaM = num(res.DeltaM)
		s.Psi = num(res.Psi)
		s.EpsilonDeg = num(res.Retardation.EpsilonDeg)
		s.Kappa = num(res.Retardation.Kappa)
		out.Pairs = append(out.Pairs, s)
	}
	return out
}

type sectorSummary struct {
	Coefficient      *float64 `json:"coefficient,omitempty"`
	HasExtra         bool     `json:"has_extra"`
	ExtraCoefficient *float64 `json:"extra_coefficient,omitempty"`
}

type channelSummary struct {
	Channel    string         `json:"channel"`
	Error      string         `json:"error,omitempty"`
	Iterations int            `json:"iterations,omitempty"`
	Region     *[2]float64    `json:"normalization_region,omitempty"`
	Converged  bool           `json:"converged"`
	FitError   string         `json:"fit_error,omitempty"`
	Candidates int            `json:"candidates,omitempty"`
	Passed     int            `json:"passed,omitempty"`
	Outer      *sectorSummary `json:"outer,omitempty"`
	Inner      *sectorSummary `json:"inner,omitempty"`
}

type telecoverSummary struct {
	RunID     string           `json:"run_id"`
	Processor string           `json:"processor"`
	Channels  []channelSummary `json:"channels"`
}

func summarizeTelecover(r *telecover.Report) telecoverSummary {
	out := telecoverSummary{RunID: r.RunID, Processor: r.Processor}
	for _, res := range r.Results {
		s := channelSummary{Channel: res.Channel}
		if res.Err != nil {
			s.Error = res.Err.Error()
			out.Channels = append(out.Channels, s)
			continue
		}
		s.Iterations = res.Iterations
		s.Region = &[2]float64{res.Region.Lower, res.Region.Upper}
		s.Converged = res.Region.Fit.Converged
		if err := res.Region.Fit.Err(); err != nil {
			s.FitError = err.Error()
		}
		s.Candidates = res.Region.Fit.Candidates
		s.Passed = res.Region.Fit.Passed
		s.Outer = summarizeSector(res.Outer)
		s.Inner = summarizeSector(res.Inner)
		out.Channels = append(out.Channels, s)
	}
	return out
}

func summarizeSector(s *telecover.SectorResult) *sectorSummary {
	return &sectorSummary{
		Coefficient:      num(s.Coefficient),
		HasExtra:         s.HasExtra,
		ExtraCoefficient: num(s.ExtraCoefficient),
	}
}

func num(v float64) *float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return nil
	}
	return &v
}
