// 运行记录的统计比较：固定周期与MARL两种信控策略在同一指标上的
// 描述统计、Welch t检验、Cohen's d效应量与Mann-Whitney U检验
package stats

import (
	"fmt"
	"math"
	"sort"

	mstats "github.com/montanaflynn/stats"
	"gonum.org/v1/gonum/stat/distuv"
)

// 双侧检验的显著性水平
const alpha = 0.05

// Summary 单组样本的描述统计
type Summary struct {
	N    int     // 样本量
	Mean float64 // 均值
	Std  float64 // 样本标准差
	Min  float64
	Max  float64
}

// Comparison 两组样本在一个指标上的完整比较结果
type Comparison struct {
	Metric string // 指标名

	Fixed Summary // 固定周期组
	MARL  Summary // MARL组

	// Welch t检验（不假定方差齐性）
	TStat   float64 // t统计量
	TDoF    float64 // Welch-Satterthwaite自由度
	TPValue float64 // 双侧p值

	// 效应量
	CohensD float64

	// Mann-Whitney U检验（正态近似）
	UStat   float64
	UPValue float64

	Significant bool   // TPValue < alpha
	Winner      string // 显著时的占优策略（fixed|marl），否则为空
}

// summarize 计算描述统计
func summarize(values []float64) (Summary, error) {
	if len(values) == 0 {
		return Summary{}, fmt.Errorf("stats: empty sample")
	}
	mean, err := mstats.Mean(values)
	if err != nil {
		return Summary{}, err
	}
	std := 0.
	if len(values) > 1 {
		if std, err = mstats.StandardDeviationSample(values); err != nil {
			return Summary{}, err
		}
	}
	min, _ := mstats.Min(values)
	max, _ := mstats.Max(values)
	return Summary{N: len(values), Mean: mean, Std: std, Min: min, Max: max}, nil
}

// welchT Welch t检验
// 返回：t统计量、自由度与双侧p值
// 算法说明：
// 1. t = (m1−m2)/sqrt(s1²/n1 + s2²/n2)
// 2. 自由度按Welch-Satterthwaite公式
// 3. p = 2·P(T_df ≤ −|t|)
// 说明：两组方差都为零时检验退化，返回NaN
func welchT(a, b Summary) (t, dof, p float64) {
	va := a.Std * a.Std / float64(a.N)
	vb := b.Std * b.Std / float64(b.N)
	se := math.Sqrt(va + vb)
	if se == 0 {
		return math.NaN(), math.NaN(), math.NaN()
	}
	t = (a.Mean - b.Mean) / se
	dof = (va + vb) * (va + vb) /
		(va*va/float64(a.N-1) + vb*vb/float64(b.N-1))
	dist := distuv.StudentsT{Mu: 0, Sigma: 1, Nu: dof}
	p = 2 * dist.CDF(-math.Abs(t))
	return t, dof, p
}

// cohensD Cohen's d效应量（合并标准差）
func cohensD(a, b Summary) float64 {
	pooled := math.Sqrt(
		(float64(a.N-1)*a.Std*a.Std + float64(b.N-1)*b.Std*b.Std) /
			float64(a.N+b.N-2))
	if pooled == 0 {
		return math.NaN()
	}
	return (a.Mean - b.Mean) / pooled
}

// mannWhitneyU Mann-Whitney U检验
// 返回：U统计量与双侧p值（正态近似，带连续性校正与结平均秩）
func mannWhitneyU(a, b []float64) (u, p float64) {
	type tagged struct {
		v     float64
		fromA bool
	}
	all := make([]tagged, 0, len(a)+len(b))
	for _, v := range a {
		all = append(all, tagged{v, true})
	}
	for _, v := range b {
		all = append(all, tagged{v, false})
	}
	sort.Slice(all, func(i, j int) bool { return all[i].v < all[j].v })

	// 结取平均秩
	ranks := make([]float64, len(all))
	for i := 0; i < len(all); {
		j := i
		for j < len(all) && all[j].v == all[i].v {
			j++
		}
		avg := float64(i+j+1) / 2
		for k := i; k < j; k++ {
			ranks[k] = avg
		}
		i = j
	}

	rankSumA := 0.
	for i, it := range all {
		if it.fromA {
			rankSumA += ranks[i]
		}
	}
	na, nb := float64(len(a)), float64(len(b))
	u1 := rankSumA - na*(na+1)/2
	u2 := na*nb - u1
	u = math.Min(u1, u2)

	mu := na * nb / 2
	sigma := math.Sqrt(na * nb * (na + nb + 1) / 12)
	if sigma == 0 {
		return u, math.NaN()
	}
	z := (u - mu + 0.5) / sigma
	p = 2 * distuv.UnitNormal.CDF(-math.Abs(z))
	if p > 1 {
		p = 1
	}
	return u, p
}

// Compare 在单个指标上比较固定周期与MARL两组运行记录
// 参数：metric-指标名，fixed/marl-两组指标值，higherIsBetter-指标方向
// 返回：完整比较结果
// 说明：任一组不足2个样本时只给出描述统计，检验字段为NaN
func Compare(metric string, fixed, marl []float64, higherIsBetter bool) (Comparison, error) {
	fs, err := summarize(fixed)
	if err != nil {
		return Comparison{}, fmt.Errorf("stats: %s fixed: %w", metric, err)
	}
	ms, err := summarize(marl)
	if err != nil {
		return Comparison{}, fmt.Errorf("stats: %s marl: %w", metric, err)
	}
	c := Comparison{
		Metric:  metric,
		Fixed:   fs,
		MARL:    ms,
		TStat:   math.NaN(),
		TDoF:    math.NaN(),
		TPValue: math.NaN(),
		CohensD: math.NaN(),
		UStat:   math.NaN(),
		UPValue: math.NaN(),
	}
	if fs.N < 2 || ms.N < 2 {
		log.Warnf("%s: need at least 2 runs per strategy (fixed=%d marl=%d), skipping tests",
			metric, fs.N, ms.N)
		return c, nil
	}
	c.TStat, c.TDoF, c.TPValue = welchT(fs, ms)
	c.CohensD = cohensD(fs, ms)
	c.UStat, c.UPValue = mannWhitneyU(fixed, marl)
	if !math.IsNaN(c.TPValue) && c.TPValue < alpha {
		c.Significant = true
		marlBetter := ms.Mean > fs.Mean
		if !higherIsBetter {
			marlBetter = ms.Mean < fs.Mean
		}
		if marlBetter {
			c.Winner = "marl"
		} else {
			c.Winner = "fixed"
		}
	}
	return c, nil
}

// Log 把比较结果按固定版式写入日志
func (c Comparison) Log() {
	log.Infof("==== %s ====", c.Metric)
	log.Infof("  fixed: n=%d mean=%.2f std=%.2f range=[%.2f, %.2f]",
		c.Fixed.N, c.Fixed.Mean, c.Fixed.Std, c.Fixed.Min, c.Fixed.Max)
	log.Infof("  marl:  n=%d mean=%.2f std=%.2f range=[%.2f, %.2f]",
		c.MARL.N, c.MARL.Mean, c.MARL.Std, c.MARL.Min, c.MARL.Max)
	log.Infof("  welch t=%.3f df=%.1f p=%.4f; cohen's d=%.3f; mann-whitney U=%.1f p=%.4f",
		c.TStat, c.TDoF, c.TPValue, c.CohensD, c.UStat, c.UPValue)
	if c.Significant {
		log.Infof("  significant at %.2f, winner: %s", alpha, c.Winner)
	} else {
		log.Infof("  no significant difference at %.2f", alpha)
	}
}
