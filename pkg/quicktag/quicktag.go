package quicktag

// Tag 文章状态位掩码，持久化为单个整数列
// 位值是版本化契约：新增标志只能使用空闲位，禁止重排已有位
type Tag uint32

const (
	// 生命周期位，任一时刻恰好置位其一
	Pending  Tag = 1 << 0 // 待审核
	Approved Tag = 1 << 1 // 已通过，公开可见
	Rejected Tag = 1 << 2 // 审核未通过

	// 修饰位，与生命周期位正交
	Deleted Tag = 1 << 3 // 软删除，列表中排除
	Video   Tag = 1 << 4 // 媒体包含视频
)

// Lifecycle 所有生命周期位的并集
const Lifecycle = Pending | Approved | Rejected

// Has 包含测试: state & flag == flag
func (t Tag) Has(flag Tag) bool {
	return t&flag == flag
}

// With 置位，幂等
func (t Tag) With(flag Tag) Tag {
	return t | flag
}

// Without 清位，幂等
func (t Tag) Without(flag Tag) Tag {
	return t &^ flag
}

// Initial 新建文章的初始状态：Pending，带视频时附加 Video
func Initial(hasVideo bool) Tag {
	t := Pending
	if hasVideo {
		t = t.With(Video)
	}
	return t
}

// Value 持久化用的整数值
func (t Tag) Value() uint32 {
	return uint32(t)
}
