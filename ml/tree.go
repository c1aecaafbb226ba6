package ml

import "math"

const leafRegularization = 1.0

// TreeNode is one node in a flat-array regression tree. Children are indices
// into the same array; -1 for leaves.
type TreeNode struct {
	FeatureIdx int     `json:"feature_idx"`
	Threshold  float64 `json:"threshold"`
	LeftChild  int     `json:"left_child"`
	RightChild int     `json:"right_child"`
	Value      float64 `json:"value"`
	IsLeaf     bool    `json:"is_leaf"`
}

type regressionTree struct {
	Nodes []TreeNode `json:"nodes"`
}

// fitTree builds a regression tree on gradient/hessian pairs. Leaf values are
// the Newton step -sum(g)/(sum(h)+lambda).
func fitTree(features [][]float64, grad, hess []float64, maxDepth int) regressionTree {
	if maxDepth <= 0 {
		maxDepth = 3
	}
	return regressionTree{Nodes: buildRegressionNode(features, grad, hess, 0, maxDepth)}
}

func buildRegressionNode(features [][]float64, grad, hess []float64, depth, maxDepth int) []TreeNode {
	leaf := TreeNode{
		FeatureIdx: -1,
		LeftChild:  -1,
		RightChild: -1,
		Value:      leafValue(grad, hess),
		IsLeaf:     true,
	}
	if depth >= maxDepth || len(grad) < 2 {
		return []TreeNode{leaf}
	}

	bestFeature, threshold, ok := findBestRegressionSplit(features, grad, hess)
	if !ok {
		return []TreeNode{leaf}
	}

	leftIdx, rightIdx := partitionRows(features, bestFeature, threshold)
	if len(leftIdx) == 0 || len(rightIdx) == 0 {
		return []TreeNode{leaf}
	}

	leftNodes := buildRegressionNode(
		pickRows(features, leftIdx), pickValues(grad, leftIdx), pickValues(hess, leftIdx),
		depth+1, maxDepth)
	rightNodes := buildRegressionNode(
		pickRows(features, rightIdx), pickValues(grad, rightIdx), pickValues(hess, rightIdx),
		depth+1, maxDepth)

	// Child blocks keep subtree-relative indices; shift them to this node's frame.
	shiftChildren(leftNodes, 1)
	shiftChildren(rightNodes, 1+len(leftNodes))

	root := TreeNode{
		FeatureIdx: bestFeature,
		Threshold:  threshold,
		LeftChild:  1,
		RightChild: 1 + len(leftNodes),
	}

	nodes := make([]TreeNode, 0, 1+len(leftNodes)+len(rightNodes))
	nodes = append(nodes, root)
	nodes = append(nodes, leftNodes...)
	nodes = append(nodes, rightNodes...)
	return nodes
}

func shiftChildren(nodes []TreeNode, offset int) {
	for i := range nodes {
		if nodes[i].IsLeaf {
			continue
		}
		nodes[i].LeftChild += offset
		nodes[i].RightChild += offset
	}
}

func (t regressionTree) predict(features []float64) float64 {
	if len(t.Nodes) == 0 {
		return 0
	}
	idx := 0
	for {
		node := t.Nodes[idx]
		if node.IsLeaf {
			return node.Value
		}
		if node.FeatureIdx < 0 || node.FeatureIdx >= len(features) {
			return 0
		}
		if features[node.FeatureIdx] <= node.Threshold {
			idx = node.LeftChild
		} else {
			idx = node.RightChild
		}
		if idx < 0 || idx >= len(t.Nodes) {
			return 0
		}
	}
}

func (t regressionTree) maxFeatureIndex() int {
	max := -1
	for _, node := range t.Nodes {
		if !node.IsLeaf && node.FeatureIdx > max {
			max = node.FeatureIdx
		}
	}
	return max
}

func leafValue(grad, hess []float64) float64 {
	var sumG, sumH float64
	for i := range grad {
		sumG += grad[i]
		sumH += hess[i]
	}
	return -sumG / (sumH + leafRegularization)
}

func findBestRegressionSplit(features [][]float64, grad, hess []float64) (int, float64, bool) {
	if len(features) == 0 {
		return -1, 0, false
	}
	featureCount := len(features[0])
	bestFeature := -1
	bestThreshold := 0.0
	bestGain := 0.0

	var totalG, totalH float64
	for i := range grad {
		totalG += grad[i]
		totalH += hess[i]
	}
	parentScore := splitScore(totalG, totalH)

	for featureIdx := 0; featureIdx < featureCount; featureIdx++ {
		values := make([]float64, len(features))
		for i := range features {
			values[i] = features[i][featureIdx]
		}
		threshold := median(values)

		var leftG, leftH float64
		leftCount := 0
		for i, row := range features {
			if row[featureIdx] <= threshold {
				leftG += grad[i]
				leftH += hess[i]
				leftCount++
			}
		}
		if leftCount == 0 || leftCount == len(features) {
			continue
		}

		gain := splitScore(leftG, leftH) + splitScore(totalG-leftG, totalH-leftH) - parentScore
		if gain > bestGain {
			bestGain = gain
			bestFeature = featureIdx
			bestThreshold = threshold
		}
	}
	if bestFeature == -1 {
		return -1, 0, false
	}
	return bestFeature, bestThreshold, true
}

func splitScore(sumG, sumH float64) float64 {
	return (sumG * sumG) / (sumH + leafRegularization)
}

func partitionRows(features [][]float64, featureIdx int, threshold float64) (left, right []int) {
	for i, row := range features {
		if row[featureIdx] <= threshold {
			left = append(left, i)
		} else {
			right = append(right, i)
		}
	}
	return left, right
}

func pickRows(features [][]float64, indices []int) [][]float64 {
	picked := make([][]float64, len(indices))
	for i, idx := range indices {
		picked[i] = features[idx]
	}
	return picked
}

func pickValues(values []float64, indices []int) []float64 {
	picked := make([]float64, len(indices))
	for i, idx := range indices {
		picked[i] = values[idx]
	}
	return picked
}

func median(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	sorted := append([]float64(nil), values...)
	sortFloats(sorted)
	mid := len(sorted) / 2
	if len(sorted)%2 == 0 {
		return (sorted[mid-1] + sorted[mid]) / 2
	}
	return sorted[mid]
}

func sortFloats(values []float64) {
	for i := 1; i < len(values); i++ {
		j := i
		for j > 0 && values[j-1] > values[j] {
			values[j-1], values[j] = values[j], values[j-1]
			j--
		}
	}
}

func isFiniteVector(vector []float64) bool {
	for _, v := range vector {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}
