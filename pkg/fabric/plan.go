package fabric

import (
	"math/rand"

	"github.com/SirJonasM/fpga-router/pkg/apperror"
)

// GeneratePlan builds a random route plan for load testing.
//
// LUT outputs become signals and LUT inputs become sinks. percentage
// (0..1] controls how many of the available outputs are used; each chosen
// signal receives destinations sinks.
func GeneratePlan(g *FabricGraph, percentage float64, destinations int, rng *rand.Rand) ([]*Routing, error) {
	if percentage <= 0 || percentage > 1 {
		return nil, apperror.Newf(apperror.CodeInvalidPercentage,
			"percentage must be in (0, 1], got %f", percentage)
	}
	if destinations <= 0 {
		return nil, apperror.Newf(apperror.CodeInvalidDestination,
			"destinations must be positive, got %d", destinations)
	}

	inputs, outputs := BucketLUTs(g.Nodes)

	rng.Shuffle(len(inputs), func(i, j int) { inputs[i], inputs[j] = inputs[j], inputs[i] })
	rng.Shuffle(len(outputs), func(i, j int) { outputs[i], outputs[j] = outputs[j], outputs[i] })

	signalCount := int(percentage * float64(len(outputs)))
	sinkCount := signalCount * destinations
	if signalCount == 0 {
		return nil, apperror.Newf(apperror.CodeInvalidPercentage,
			"percentage %f selects no signals out of %d LUT outputs", percentage, len(outputs))
	}
	if sinkCount > len(inputs) {
		return nil, apperror.Newf(apperror.CodeInvalidDestination,
			"plan needs %d sinks but the fabric only has %d LUT inputs", sinkCount, len(inputs))
	}

	plan := make([]*Routing, 0, signalCount)
	for i := 0; i < signalCount; i++ {
		sinks := make([]int, destinations)
		copy(sinks, inputs[i*destinations:(i+1)*destinations])
		plan = append(plan, &Routing{
			Signal: outputs[i],
			Sinks:  sinks,
		})
	}
	return plan, nil
}
