package recording

import "github.com/gogpu/gputypes"

// CommandType identifies the type of a command.
type CommandType uint8

const (
	// Toggles
	CmdEnable CommandType = iota // Enable or disable a Capability

	// Pipeline state
	CmdSetScissorRect       // Set the scissor rectangle
	CmdSetViewport          // Set the viewport
	CmdSetDepthFunc         // Set the depth comparison function
	CmdSetBlendFunc         // Set a simple blend function
	CmdSetBlendFuncSeparate // Set separate color and alpha blend factors
	CmdSetLineWidth         // Set the rasterized line width
	CmdSetPointSize         // Set the rasterized point size
	CmdSetMatrix            // Set the vertex transform

	// Bindings
	CmdBindTexture // Bind a texture for sampling
	CmdBindTarget  // Bind a render target (0 is the default framebuffer)

	// Actions
	CmdClear // Clear the bound target
	CmdDraw  // Draw a range of the index buffer
)

var commandTypeNames = [...]string{
	CmdEnable:               "Enable",
	CmdSetScissorRect:       "SetScissorRect",
	CmdSetViewport:          "SetViewport",
	CmdSetDepthFunc:         "SetDepthFunc",
	CmdSetBlendFunc:         "SetBlendFunc",
	CmdSetBlendFuncSeparate: "SetBlendFuncSeparate",
	CmdSetLineWidth:         "SetLineWidth",
	CmdSetPointSize:         "SetPointSize",
	CmdSetMatrix:            "SetMatrix",
	CmdBindTexture:          "BindTexture",
	CmdBindTarget:           "BindTarget",
	CmdClear:                "Clear",
	CmdDraw:                 "Draw",
}

// String returns the string representation of a CommandType.
func (c CommandType) String() string {
	if int(c) < len(commandTypeNames) {
		return commandTypeNames[c]
	}
	return "Unknown"
}

// Command is the interface implemented by all command types.
type Command interface {
	// Type returns the CommandType for this command.
	Type() CommandType
}

// --------------------------------------------------------------------------
// Toggles
// --------------------------------------------------------------------------

// EnableCommand switches a capability on or off.
type EnableCommand struct {
	Cap     Capability
	Enabled bool
}

// Type implements Command.
func (EnableCommand) Type() CommandType { return CmdEnable }

// --------------------------------------------------------------------------
// Pipeline State
// --------------------------------------------------------------------------

// SetScissorRectCommand sets the scissor rectangle in window coordinates.
type SetScissorRectCommand struct {
	Rect Rect
}

// Type implements Command.
func (SetScissorRectCommand) Type() CommandType { return CmdSetScissorRect }

// SetViewportCommand sets the viewport in window coordinates.
type SetViewportCommand struct {
	Rect Rect
}

// Type implements Command.
func (SetViewportCommand) Type() CommandType { return CmdSetViewport }

// SetDepthFuncCommand sets the depth comparison function.
type SetDepthFuncCommand struct {
	Func gputypes.CompareFunction
}

// Type implements Command.
func (SetDepthFuncCommand) Type() CommandType { return CmdSetDepthFunc }

// SetBlendFuncCommand sets the same blend factors for color and alpha.
type SetBlendFuncCommand struct {
	Src, Dst gputypes.BlendFactor
}

// Type implements Command.
func (SetBlendFuncCommand) Type() CommandType { return CmdSetBlendFunc }

// Func returns the command as a BlendFunc.
func (c SetBlendFuncCommand) Func() BlendFunc { return Blend(c.Src, c.Dst) }

// SetBlendFuncSeparateCommand sets distinct color and alpha blend factors.
type SetBlendFuncSeparateCommand struct {
	Func BlendFunc
}

// Type implements Command.
func (SetBlendFuncSeparateCommand) Type() CommandType { return CmdSetBlendFuncSeparate }

// SetLineWidthCommand sets the width of rasterized lines.
type SetLineWidthCommand struct {
	Width float32
}

// Type implements Command.
func (SetLineWidthCommand) Type() CommandType { return CmdSetLineWidth }

// SetPointSizeCommand sets the size of rasterized points.
type SetPointSizeCommand struct {
	Size float32
}

// Type implements Command.
func (SetPointSizeCommand) Type() CommandType { return CmdSetPointSize }

// SetMatrixCommand sets the vertex transform.
type SetMatrixCommand struct {
	Matrix Mat4
}

// Type implements Command.
func (SetMatrixCommand) Type() CommandType { return CmdSetMatrix }

// --------------------------------------------------------------------------
// Bindings
// --------------------------------------------------------------------------

// BindTextureCommand binds a texture. The queue records its fallback
// texture in place of 0, so Texture is 0 only when no fallback is set.
type BindTextureCommand struct {
	Texture uint32
}

// Type implements Command.
func (BindTextureCommand) Type() CommandType { return CmdBindTexture }

// BindTargetCommand binds a render target. Target 0 is the default
// framebuffer.
type BindTargetCommand struct {
	Target uint32
}

// Type implements Command.
func (BindTargetCommand) Type() CommandType { return CmdBindTarget }

// --------------------------------------------------------------------------
// Actions
// --------------------------------------------------------------------------

// ClearCommand clears the bound target to Color, and the depth buffer if
// Depth is set.
type ClearCommand struct {
	Color [4]float32
	Depth bool
}

// Type implements Command.
func (ClearCommand) Type() CommandType { return CmdClear }

// DrawCommand draws Count indices starting at index Start.
type DrawCommand struct {
	Mode  gputypes.PrimitiveTopology
	Start int
	Count int
}

// Type implements Command.
func (DrawCommand) Type() CommandType { return CmdDraw }

// Compile-time interface checks.
var (
	_ Command = EnableCommand{}
	_ Command = SetScissorRectCommand{}
	_ Command = SetViewportCommand{}
	_ Command = SetDepthFuncCommand{}
	_ Command = SetBlendFuncCommand{}
	_ Command = SetBlendFuncSeparateCommand{}
	_ Command = SetLineWidthCommand{}
	_ Command = SetPointSizeCommand{}
	_ Command = SetMatrixCommand{}
	_ Command = BindTextureCommand{}
	_ Command = BindTargetCommand{}
	_ Command = ClearCommand{}
	_ Command = DrawCommand{}
)
