// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package political

import (
	"gonum.org/v1/gonum/stat"

	"github.com/pdiddy/discourse-engine/pkg/types"
)

const (
	// DefaultMinClusterSize is the smallest octant reported as a cluster.
	DefaultMinClusterSize = 5

	// InsufficientClusterData is the message carried by a cluster report
	// when too few items were supplied.
	InsufficientClusterData = "Insufficient data for clustering"

	mixedGroupLabel = "Mixed Political Group"
)

// clusterLabels names each sign octant. Keys are
// economic_social_governance poles.
var clusterLabels = map[string]string{
	"market_liberty_decentralized":    "Libertarian",
	"market_liberty_centralized":      "Neoliberal",
	"market_authority_decentralized":  "Traditional Conservative",
	"market_authority_centralized":    "Right-Wing Authoritarian",
	"planned_liberty_decentralized":   "Left-Libertarian",
	"planned_liberty_centralized":     "Social Democrat",
	"planned_authority_decentralized": "Communitarian",
	"planned_authority_centralized":   "Statist",
}

// OctantKey names the sign octant of a position. Strictly positive
// scores fall on the market, authority and centralized poles.
func OctantKey(economic, social, governance float64) string {
	key := "planned"
	if economic > 0 {
		key = "market"
	}
	if social > 0 {
		key += "_authority"
	} else {
		key += "_liberty"
	}
	if governance > 0 {
		key += "_centralized"
	} else {
		key += "_decentralized"
	}
	return key
}

// ClusterLabel returns the political label of an octant key, or
// "Mixed Political Group" for a key outside the fixed table.
func ClusterLabel(key string) string {
	if label, ok := clusterLabels[key]; ok {
		return label
	}
	return mixedGroupLabel
}

// IdentifyClusters assigns every fully scored item to its sign octant and
// reports the octants holding at least minClusterSize items. The octants
// are fixed in advance; nothing is fitted to the data. A minClusterSize
// of zero or less uses DefaultMinClusterSize. Fewer than
// 2*minClusterSize scored items yields the insufficient-data report.
func IdentifyClusters(analyses []types.PoliticalAnalysis, minClusterSize int) types.ClusterReport {
	if minClusterSize <= 0 {
		minClusterSize = DefaultMinClusterSize
	}

	pts := fullPoints(analyses)
	if len(pts) < 2*minClusterSize {
		return types.ClusterReport{Message: InsufficientClusterData}
	}

	members := make(map[string][]point)
	for _, p := range pts {
		key := OctantKey(p.coords[0], p.coords[1], p.coords[2])
		members[key] = append(members[key], p)
	}

	clusters := make(map[string]types.Cluster)
	for key, group := range members {
		if len(group) < minClusterSize {
			continue
		}
		clusters[key] = types.Cluster{
			Size:       len(group),
			Percentage: float64(len(group)) / float64(len(pts)) * 100,
			Centroid:   centroidOf(group),
			Label:      ClusterLabel(key),
		}
	}

	return types.ClusterReport{
		Clusters:    clusters,
		TotalPoints: len(pts),
		NumClusters: len(clusters),
	}
}

func centroidOf(group []point) types.Centroid {
	axis := make([]float64, len(group))
	mean := func(d int) float64 {
		for i, p := range group {
			axis[i] = p.coords[d]
		}
		return stat.Mean(axis, nil)
	}
	return types.Centroid{
		Economic:   mean(0),
		Social:     mean(1),
		Governance: mean(2),
	}
}
