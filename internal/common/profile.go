package common

import "github.com/DODOEX/huffcodec/utils/general/names"

type JobStatus string

const (
	Pending JobStatus = "pending" // 已创建，等待处理
	Running JobStatus = "running" // 正在压缩
	Success JobStatus = "success" // 压缩成功
	Fail    JobStatus = "fail"    // 压缩失败，e.g.: 输入不合法，源文件不存在，校验不一致
	Cancel  JobStatus = "cancel"  // 批处理被取消
	Error   JobStatus = "error"   // 内部报错，e.g.: 输出写入失败
)

// 单个文件的压缩记录，发布到 amqp
type JobProfile = struct {
	ID     names.UUIDv4 `json:"id"`
	RunID  names.UUIDv4 `json:"runId"`
	Target string       `json:"target"`
	Source string       `json:"source"`
	Output string       `json:"output"`
	Status JobStatus    `json:"status"`
	Error  string       `json:"error,omitempty"`

	Alphabet        string      `json:"alphabet"`
	Symbols         uint64      `json:"symbols"`
	Distinct        int         `json:"distinct"`
	EncodedBits     uint64      `json:"encodedBits"`
	OriginalBytes   names.Bytes `json:"originalBytes"`
	CompressedBytes names.Bytes `json:"compressedBytes"`
	Verified        bool        `json:"verified"`

	Starttime names.Milliseconds `json:"startTime"`
	Endtime   names.Milliseconds `json:"endTime"`
}

// 一次批处理的汇总
type RunProfile = struct {
	RunID     names.UUIDv4       `json:"runId"`
	Target    string             `json:"target"`
	Jobs      int                `json:"jobs"`
	Succeeded int                `json:"succeeded"`
	Failed    int                `json:"failed"`
	Starttime names.Milliseconds `json:"startTime"`
	Endtime   names.Milliseconds `json:"endTime"`
}
