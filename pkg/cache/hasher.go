package cache

import (
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	"fmt"
	"io"
	"math"

	"github.com/SirJonasM/fpga-router/pkg/fabric"
)

// GraphHash вычисляет хеш графа для использования как ключ кэша
func GraphHash(g *fabric.FabricGraph) string {
	if g == nil {
		return ""
	}

	h := sha256.New()
	// Порядок узлов и рёбер детерминирован построением из файла
	for i, node := range g.Nodes {
		io.WriteString(h, node.FullID())
		for _, edge := range g.Map[i] {
			var buf [12]byte
			binary.LittleEndian.PutUint32(buf[0:4], uint32(i))
			binary.LittleEndian.PutUint32(buf[4:8], uint32(edge.To))
			binary.LittleEndian.PutUint32(buf[8:12], math.Float32bits(edge.Cost))
			h.Write(buf[:])
		}
	}

	sum := h.Sum(nil)
	return hex.EncodeToString(sum[:16])
}

// PlanHash вычисляет хеш плана трассировки (только запросы, без результатов)
func PlanHash(g *fabric.FabricGraph, plan []*fabric.Routing) string {
	h := sha256.New()
	for _, route := range plan {
		io.WriteString(h, g.Nodes[route.Signal].FullID())
		for _, sink := range route.Sinks {
			io.WriteString(h, g.Nodes[sink].FullID())
		}
		h.Write([]byte{0})
	}
	sum := h.Sum(nil)
	return hex.EncodeToString(sum[:16])
}

// BuildRouteKey собирает ключ кэша результата роутинга
func BuildRouteKey(graphHash, planHash, solver string, histFactor float64, maxIterations int) string {
	return fmt.Sprintf("route:%s:%s:%s:%g:%d", graphHash, planHash, solver, histFactor, maxIterations)
}
