package walkforward

import "math"

// Metrics are classification metrics over the combined out-of-fold
// prediction series. In-sample rows never contribute.
type Metrics struct {
	TotalPredictions int
	LabeledRows      int
	Accuracy         float64
	Precision        float64
	Recall           float64
	F1               float64
}

// accuracy computes the fraction of correct binary predictions over
// rows where both prediction and label are defined.
func accuracy(preds, labels []float64, start, end int) float64 {
	correct, total := 0, 0
	for i := start; i < end; i++ {
		if math.IsNaN(preds[i]) || i >= len(labels) || math.IsNaN(labels[i]) {
			continue
		}
		total++
		if binary(preds[i]) == binary(labels[i]) {
			correct++
		}
	}
	if total == 0 {
		return 0
	}
	return float64(correct) / float64(total)
}

// computeMetrics aggregates the full out-of-fold series against
// labels.
func computeMetrics(preds, labels []float64) Metrics {
	var m Metrics
	var tp, fp, fn, correct int

	for i := range preds {
		if math.IsNaN(preds[i]) {
			continue
		}
		m.TotalPredictions++
		if i >= len(labels) || math.IsNaN(labels[i]) {
			continue
		}
		m.LabeledRows++

		p, l := binary(preds[i]), binary(labels[i])
		if p == l {
			correct++
		}
		switch {
		case p == 1 && l == 1:
			tp++
		case p == 1 && l == 0:
			fp++
		case p == 0 && l == 1:
			fn++
		}
	}

	if m.LabeledRows > 0 {
		m.Accuracy = float64(correct) / float64(m.LabeledRows)
	}
	if tp+fp > 0 {
		m.Precision = float64(tp) / float64(tp+fp)
	}
	if tp+fn > 0 {
		m.Recall = float64(tp) / float64(tp+fn)
	}
	if m.Precision+m.Recall > 0 {
		m.F1 = 2 * m.Precision * m.Recall / (m.Precision + m.Recall)
	}
	return m
}

func binary(v float64) int {
	if v >= 0.5 {
		return 1
	}
	return 0
}
