package metadata

import "strings"

/** @brief Shader stages available in the system. */
type ShaderStage int

const (
	ShaderStageVertex   ShaderStage = 0x00000001
	ShaderStageGeometry ShaderStage = 0x00000002
	ShaderStageFragment ShaderStage = 0x00000004
	ShaderStageCompute  ShaderStage = 0x0000008
)

func (s ShaderStage) String() string {
	if s == 0 {
		return "None"
	}
	var parts []string
	if s&ShaderStageVertex != 0 {
		parts = append(parts, "Vertex")
	}
	if s&ShaderStageGeometry != 0 {
		parts = append(parts, "Geometry")
	}
	if s&ShaderStageFragment != 0 {
		parts = append(parts, "Fragment")
	}
	if s&ShaderStageCompute != 0 {
		parts = append(parts, "Compute")
	}
	return strings.Join(parts, "|")
}
