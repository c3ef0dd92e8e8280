package domain

// VideoFile 描述扫描得到的一个视频文件（只做 stat，不读内容）。
//
// 不变量：AbsPath 必须是 clean + absolute。
type VideoFile struct {
	AbsPath string
	RelPath string
	Base    string // 不含扩展名
	Ext     string // 小写，例如 ".mp4"
	Size    int64
}

// WorkItem 是按编号聚合后的一次搜索任务。
// FileIdx 指向 []VideoFile，避免复制文件结构体。
type WorkItem struct {
	Token   Token
	FileIdx []int
}

// Unmatched 描述无法提取唯一编号的文件（不会触发任何搜索）。
type Unmatched struct {
	File       VideoFile
	Kind       string // "no_match" | "ambiguous"
	Candidates []Token // 仅 ambiguous 时非空（已排序）
}
