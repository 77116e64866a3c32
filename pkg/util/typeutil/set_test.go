// Licensed to the LF AI & Data foundation under one
// or more contributor license agreements. See the NOTICE file
// distributed with this work for additional information
// regarding copyright ownership. The ASF licenses this file
// to you under the Apache License, Version 2.0 (the
// "License"); you may not use this file except in compliance
// with the License. You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package typeutil

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSet(t *testing.T) {
	set := NewSet[int]()
	set.Insert(5)
	set.Insert(7)
	set.Insert(5)

	assert.True(t, set.Contain(5))
	assert.True(t, set.Contain(5, 7))
	assert.False(t, set.Contain(5, 6, 7))
	assert.Equal(t, 2, set.Len())

	clone := set.Clone()
	set.Remove(7)
	assert.False(t, set.Contain(7))
	assert.True(t, clone.Contain(7))

	count := 0
	clone.Range(func(element int) bool {
		count++
		return true
	})
	assert.Equal(t, 2, count)

	assert.ElementsMatch(t, []int{5}, set.Collect())
}
