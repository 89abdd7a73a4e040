package container

import "github.com/tsinghua-fib-lab/optitraffic/utils/randengine"

// Ring 有界先进先出缓冲区
// 功能：容量固定的FIFO缓冲区，写满后覆盖最旧的元素
// 说明：用作经验回放缓冲区，支持均匀无偏的随机抽样
type Ring[T any] struct {
	data  []T // 底层存储
	start int // 最旧元素的位置
	size  int // 当前元素数量
}

// NewRing 创建有界FIFO缓冲区
// 功能：初始化一个容量为capacity的空缓冲区
// 参数：capacity-缓冲区容量（必须为正）
// 返回：新创建的缓冲区指针
func NewRing[T any](capacity int) *Ring[T] {
	if capacity <= 0 {
		panic("container: ring capacity must be positive")
	}
	return &Ring[T]{data: make([]T, capacity)}
}

// Len 获取当前元素数量
func (r *Ring[T]) Len() int {
	return r.size
}

// Cap 获取缓冲区容量
func (r *Ring[T]) Cap() int {
	return len(r.data)
}

// Push 加入元素
// 功能：向缓冲区尾部添加元素，缓冲区已满时淘汰最旧的元素
// 参数：value-要添加的元素
func (r *Ring[T]) Push(value T) {
	if r.size < len(r.data) {
		r.data[(r.start+r.size)%len(r.data)] = value
		r.size++
		return
	}
	// 已满，覆盖最旧元素
	r.data[r.start] = value
	r.start = (r.start + 1) % len(r.data)
}

// At 获取第i个元素（0为最旧）
func (r *Ring[T]) At(i int) T {
	if i < 0 || i >= r.size {
		panic("container: ring index out of range")
	}
	return r.data[(r.start+i)%len(r.data)]
}

// Sample 均匀随机抽样
// 功能：从缓冲区中无偏地抽取n个元素（无放回）
// 参数：n-抽样数量，generator-随机数引擎
// 返回：抽取的元素列表；元素不足n个时返回nil
// 说明：通过随机排列的前n项实现，不偏向较新的元素
func (r *Ring[T]) Sample(n int, generator *randengine.Engine) []T {
	if n <= 0 || r.size < n {
		return nil
	}
	perm := generator.Perm(r.size)
	out := make([]T, 0, n)
	for _, i := range perm[:n] {
		out = append(out, r.At(i))
	}
	return out
}
