package postgres

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"customfields/internal/core/id"
)

type AuditColumns struct {
	UpdatedBy string `db:"updated_by"`
}

type sampleRow struct {
	ID      id.ID  `db:"id"`
	Seq     int64  `db:"seq"`
	Label   string `db:"label"`
	Ignored string `db:"-"`
	NoTag   string
	AuditColumns
}

func TestExtractDBColumns_FlattensEmbedded(t *testing.T) {
	cols := ExtractDBColumns[sampleRow]()
	assert.Equal(t, []string{"id", "seq", "label", "updated_by"}, cols)
}

func TestStructToMap_Omit(t *testing.T) {
	row := sampleRow{ID: id.New(), Seq: 7, Label: "Age", AuditColumns: AuditColumns{UpdatedBy: "u1"}}

	m := StructToMap(&row, "seq")
	assert.Equal(t, row.ID, m["id"])
	assert.Equal(t, "Age", m["label"])
	assert.Equal(t, "u1", m["updated_by"])
	assert.NotContains(t, m, "seq")
	assert.Len(t, m, 3)

	assert.Nil(t, StructToMap(42))
}
