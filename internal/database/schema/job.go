package schema

import (
	"time"

	"github.com/DODOEX/huffcodec/internal/common"
	"github.com/jackc/pgx/pgtype"
)

type Model struct {
	ID        uint64    `gorm:"primaryKey; autoIncrement" json:"id"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

// Job is one file driven through the compression pipeline by a batch run.
type Job struct {
	UUID        string           `gorm:"type:varchar(36); uniqueIndex; notNull;" json:"uuid"`
	RunID       string           `gorm:"type:varchar(36); index; notNull;" json:"run_id"`
	Target      string           `gorm:"type:varchar(255); notNull;" json:"target"`
	Source      string           `gorm:"type:text; notNull;" json:"source"`
	Destination string           `gorm:"type:text;" json:"destination"`
	Alphabet    string           `gorm:"type:varchar(16); notNull;" json:"alphabet"`
	Status      common.JobStatus `gorm:"type:varchar(16); notNull; default:'pending'" json:"status"`
	Verified    bool             `gorm:"notNull; default:false" json:"verified"`

	OriginalSize   int64  `json:"original_size"`
	CompressedSize int64  `json:"compressed_size"`
	EncodedBits    uint64 `json:"encoded_bits"`
	Symbols        uint64 `json:"symbols"`
	Distinct       int    `json:"distinct"`
	Duration       int64  `json:"duration"` // 毫秒
	Error          string `gorm:"type:text;" json:"error,omitempty"`

	// 统计摘要 {"stats": {...}, "ratio": 0.61}
	Summary *pgtype.JSONB `gorm:"type:jsonb; notNull; default:'{}'::jsonb;" json:"summary"`

	Model
}
