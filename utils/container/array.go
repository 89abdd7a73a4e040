package container

import "sort"

// IIncrementalItem 支持增量更新的元素接口
// 功能：定义支持增量更新的元素必须实现的方法
// 说明：元素通过索引跟踪自己在数组中的位置，使删除操作无需查找
type IIncrementalItem interface {
	Index() int         // 获取元素的索引
	SetIndex(index int) // 设置元素的索引
}

// IncrementalItemBase 增量元素基类
// 功能：提供增量元素的基础实现，包含索引管理功能
// 说明：作为实体结构体的嵌入字段，快速实现IIncrementalItem接口
type IncrementalItemBase struct {
	index int // 元素在数组中的索引
}

// Index 获取元素的索引
func (b *IncrementalItemBase) Index() int {
	return b.index
}

// SetIndex 设置元素的索引
func (b *IncrementalItemBase) SetIndex(index int) {
	b.index = index
}

// IncrementalArray 增量数组，支持增量维护元素的数组
// 功能：收集一帧内的添加与删除请求，在Prepare时统一应用
// 说明：保证帧内遍历时集合不变，避免边遍历边删除的失效问题；
// 仿真为单线程逐帧推进，增删请求只在帧内产生，无需加锁
type IncrementalArray[T IIncrementalItem] struct {
	data   []T // 主数据数组
	add    []T // 待添加的元素列表
	remove []T // 待删除的元素列表
}

// NewIncrementalArray 创建增量数组
func NewIncrementalArray[T IIncrementalItem]() *IncrementalArray[T] {
	return &IncrementalArray[T]{
		data:   make([]T, 0),
		add:    make([]T, 0),
		remove: make([]T, 0),
	}
}

// Len 获取当前数组长度
func (a *IncrementalArray[T]) Len() int {
	return len(a.data)
}

// Data 获取当前数据
// 说明：返回的是已应用所有增量操作的底层切片，调用方只读遍历
func (a *IncrementalArray[T]) Data() []T {
	return a.data
}

// Add 增加元素（等到Prepare时才会真正增加）
func (a *IncrementalArray[T]) Add(value T) {
	a.add = append(a.add, value)
}

// Remove 删除元素（等到Prepare时才会真正删除）
func (a *IncrementalArray[T]) Remove(value T) {
	a.remove = append(a.remove, value)
}

// Prepare 执行增量操作
// 功能：统一执行所有待处理的添加和删除操作
// 算法说明：
// 1. 按索引从大到小对删除请求排序，逐个与末尾元素交换后截断
// 2. 将新增元素追加到末尾
// 3. 全程维护元素索引，最后清空待处理列表
// 说明：元素顺序不做保证，遍历方不依赖顺序
func (a *IncrementalArray[T]) Prepare() {
	if len(a.remove) > 0 {
		sort.Slice(a.remove, func(i, j int) bool {
			return a.remove[i].Index() > a.remove[j].Index()
		})
		for _, x := range a.remove {
			ind := x.Index()
			last := len(a.data) - 1
			a.data[ind] = a.data[last]
			a.data[ind].SetIndex(ind)
			a.data = a.data[:last]
		}
	}
	for _, x := range a.add {
		x.SetIndex(len(a.data))
		a.data = append(a.data, x)
	}

	a.add = a.add[:0]
	a.remove = a.remove[:0]
}
