// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0
// no-cloc

package attrs

import (
	"embed"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

//go:embed testdata/*.yaml
var testDataFS embed.FS

type testSetCase struct {
	Name      string `yaml:"name"`
	Initial   []Attr `yaml:"initial"`
	Value     string `yaml:"value"`
	WantLen   int    `yaml:"wantLen"`
	WantAttrs []Attr `yaml:"wantAttrs"`
	WantErr   bool   `yaml:"wantErr"`
}

type testTransformCase struct {
	Name          string      `yaml:"name"`
	TransformSpec string      `yaml:"transformSpec"`
	Input         interface{} `yaml:"input"`
	Want          interface{} `yaml:"want"`
}

func loadTestData(t *testing.T, filename string, v any) {
	t.Helper()
	data, err := testDataFS.ReadFile("testdata/" + filename)
	require.NoError(t, err)
	require.NoError(t, yaml.Unmarshal(data, v))
}

func TestAttrList_Set(t *testing.T) {
	var cases []testSetCase
	loadTestData(t, "set.yaml", &cases)

	for _, tc := range cases {
		t.Run(tc.Name, func(t *testing.T) {
			list := AttrList(append([]Attr(nil), tc.Initial...))

			err := list.Set(tc.Value)

			if tc.WantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Len(t, list, tc.WantLen)
			assert.Equal(t, tc.WantAttrs, []Attr(list))
		})
	}
}

func TestAttr_Transform(t *testing.T) {
	var cases []testTransformCase
	loadTestData(t, "transform.yaml", &cases)

	for _, tc := range cases {
		t.Run(tc.Name, func(t *testing.T) {
			a := Attr{TransformSpec: tc.TransformSpec}
			assert.Equal(t, tc.Want, a.Transform(tc.Input))
		})
	}
}

func TestAttrList_SetGlobalTransformSpec(t *testing.T) {
	list := Defaults("path", "value")
	require.NoError(t, list.Set("value::4,*::u"))

	list.SetGlobalTransformSpec()

	assert.Equal(t, "u,", list[0].TransformSpec)
	assert.Equal(t, "u,4", list[1].TransformSpec)
	assert.Equal(t, "HELL", list[1].Transform("hello"))
}

func TestAttrList_SetGlobalTransformSpecWithoutGlobal(t *testing.T) {
	list := Defaults("path")

	list.SetGlobalTransformSpec()

	assert.Empty(t, list[0].TransformSpec)
}

func TestAttrList_Visible(t *testing.T) {
	list := Defaults("path", "kind", "value")
	require.NoError(t, list.Set("!kind"))

	visible := list.Visible()

	require.Len(t, visible, 2)
	assert.Equal(t, "path", visible[0].Key)
	assert.Equal(t, "value", visible[1].Key)
}

func TestAttrList_String(t *testing.T) {
	list := Defaults("path", "kind")
	require.NoError(t, list.Set("!kind,path:Path:u"))

	assert.Equal(t, "path:Path:u,!kind:kind:", list.String())
}
