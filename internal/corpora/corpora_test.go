package corpora_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/sublee/derivegen/internal/corpora"
)

func TestDiff(t *testing.T) {
	assert.Empty(t, corpora.Diff("a\nb\n", "a\nb\n"))
	assert.NotEmpty(t, corpora.Diff("a\nb", "a\nb\n"))
	assert.Equal(t, `--- want
+++ got
@@ -1,2 +1,2 @@
 a
-b
+c
`, corpora.Diff("a\nc\n", "a\nb\n"))
}
