// Package reflect produces shader resource streams from shader source.
package reflect

import (
	"cmp"
	"fmt"

	"github.com/gogpu/naga"
	"github.com/gogpu/naga/ir"
	"github.com/spaghettifunk/shaderbind/engine/core"
	"github.com/spaghettifunk/shaderbind/engine/renderer/metadata"
	"golang.org/x/exp/slices"
)

/**
 * @brief Reflects the bound globals of a WGSL module and streams them to r:
 * counts first, then uniform buffers, storage images, storage buffers and
 * atomic counters, uniform texel buffers, samplers and finally images. Every
 * group is ordered by group and binding. All resources are reported as used
 * by every stage the module has an entry point for.
 */
func ReflectWGSL(source string, r metadata.ShaderResourceReporter) error {
	ast, err := naga.Parse(source)
	if err != nil {
		return fmt.Errorf("failed to parse shader: %w", err)
	}
	module, err := naga.Lower(ast)
	if err != nil {
		return fmt.Errorf("failed to lower shader: %w", err)
	}

	resources, err := ModuleResources(module)
	if err != nil {
		return err
	}

	var counts metadata.ShaderResourceCounts
	for i := range resources {
		counts.Add(resources[i].Type)
		counts.NameBytes += len(resources[i].Name)
	}
	if err := r.ReportCounts(counts); err != nil {
		return err
	}
	for i := range resources {
		if err := r.ReportResource(resources[i]); err != nil {
			return err
		}
	}
	core.LogDebug("reflected %d shader resources", len(resources))
	return nil
}

// reportGroup is the position of a resource type in the reflection stream.
func reportGroup(t metadata.ShaderResourceType) int {
	switch t {
	case metadata.ShaderResourceTypeUniformBuffer:
		return 0
	case metadata.ShaderResourceTypeStorageImage:
		return 1
	case metadata.ShaderResourceTypeStorageBuffer,
		metadata.ShaderResourceTypeStorageTexelBuffer,
		metadata.ShaderResourceTypeAtomicCounter:
		return 2
	case metadata.ShaderResourceTypeUniformTexelBuffer:
		return 3
	case metadata.ShaderResourceTypeSeparateSampler:
		return 4
	}
	return 5
}

/**
 * @brief The bound resources of a lowered module in reporting order.
 */
func ModuleResources(module *ir.Module) ([]metadata.ShaderResourceDesc, error) {
	stages := moduleStages(module)

	var resources []metadata.ShaderResourceDesc
	for _, g := range module.GlobalVariables {
		if g.Binding == nil {
			continue
		}
		desc, err := classifyGlobal(module, g)
		if err != nil {
			return nil, err
		}
		desc.Stages = stages
		resources = append(resources, desc)
	}

	slices.SortStableFunc(resources, func(a, b metadata.ShaderResourceDesc) int {
		if c := cmp.Compare(reportGroup(a.Type), reportGroup(b.Type)); c != 0 {
			return c
		}
		if c := cmp.Compare(a.Set, b.Set); c != 0 {
			return c
		}
		return cmp.Compare(a.Binding, b.Binding)
	})
	return resources, nil
}

func moduleStages(module *ir.Module) metadata.ShaderStage {
	var stages metadata.ShaderStage
	for _, ep := range module.EntryPoints {
		switch ep.Stage {
		case ir.StageVertex:
			stages |= metadata.ShaderStageVertex
		case ir.StageFragment:
			stages |= metadata.ShaderStageFragment
		case ir.StageCompute:
			stages |= metadata.ShaderStageCompute
		}
	}
	return stages
}

func typeInner(module *ir.Module, handle ir.TypeHandle) (ir.TypeInner, error) {
	if int(handle) >= len(module.Types) {
		return nil, fmt.Errorf("type handle %d out of range", handle)
	}
	return module.Types[handle].Inner, nil
}

func classifyGlobal(module *ir.Module, g ir.GlobalVariable) (metadata.ShaderResourceDesc, error) {
	desc := metadata.ShaderResourceDesc{
		Name:         g.Name,
		Set:          g.Binding.Group,
		Binding:      g.Binding.Binding,
		ArraySize:    1,
		SamplerIndex: metadata.INVALID_SAMPLER_INDEX,
	}

	inner, err := typeInner(module, g.Type)
	if err != nil {
		return desc, fmt.Errorf("global '%s': %w", g.Name, err)
	}

	switch g.Space {
	case ir.SpaceUniform:
		desc.Type = metadata.ShaderResourceTypeUniformBuffer
		return desc, nil

	case ir.SpaceStorage:
		if _, ok := inner.(ir.AtomicType); ok {
			desc.Type = metadata.ShaderResourceTypeAtomicCounter
		} else {
			desc.Type = metadata.ShaderResourceTypeStorageBuffer
		}
		return desc, nil

	case ir.SpaceHandle:
		if arr, ok := inner.(ir.ArrayType); ok {
			if arr.Size.Constant == nil {
				return desc, fmt.Errorf("global '%s': runtime-sized resource arrays are not supported", g.Name)
			}
			desc.ArraySize = *arr.Size.Constant
			if inner, err = typeInner(module, arr.Base); err != nil {
				return desc, fmt.Errorf("global '%s': %w", g.Name, err)
			}
		}
		switch t := inner.(type) {
		case ir.SamplerType:
			desc.Type = metadata.ShaderResourceTypeSeparateSampler
			return desc, nil
		case ir.ImageType:
			if t.Class == ir.ImageClassStorage {
				desc.Type = metadata.ShaderResourceTypeStorageImage
			} else {
				desc.Type = metadata.ShaderResourceTypeSeparateImage
			}
			return desc, nil
		}
	}
	return desc, fmt.Errorf("global '%s' at group %d binding %d is not a bindable resource", g.Name, desc.Set, desc.Binding)
}
