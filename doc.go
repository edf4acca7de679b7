// Package grove is a retained-mode 3D scene graph.
//
// A scene is a tree of [Node] values: list nodes group children, geometry
// nodes carry a [Mesh], light nodes carry [LightParameters] and camera
// nodes carry [CameraParameters]. Each node may hold an SRT or a general
// matrix relative to its parent; world matrices and bounding boxes are
// computed lazily and invalidated when anything above or below changes.
//
// # Quick start
//
// The ebitenrender package opens a window and drives a [Scene]:
//
//	scene := grove.NewScene()
//	cam := grove.NewCameraNode("camera", grove.DefaultCameraParameters())
//	cam.SetRelPosition(mgl64.Vec3{0, 0, 5})
//	scene.SetCamera(cam)
//
//	box := grove.NewGeometryNode("box", grove.NewBoxMesh(
//		grove.NewBox(mgl64.Vec3{-1, -1, -1}, mgl64.Vec3{1, 1, 1}), grove.ColorWhite))
//	scene.Root().AddChild(box)
//
//	ebitenrender.Run(scene, ebitenrender.DefaultRunConfig())
//
// # States
//
// A [State] attached to a node configures the [RenderingContext] while the
// node and its subtree are displayed: materials, blending, textures,
// shaders, lights and so on. [EnableState] and [DisableState] pair up
// around each display; a state that returns [StateSkipRendering] hides
// the node. A [GroupState] enables several states as one and may be shared
// by nodes nested inside each other.
//
// # Render channels
//
// [FrameContext.DisplayNode] offers a node to the renderers registered for
// a channel, latest first. Transparent materials and blending redirect
// their node to the transparency channel when a
// [TransparencyRendererState] above them serves it; the collected nodes
// are drawn back to front when that state is disabled.
//
// # Behaviors
//
// A [Behavior] is a shared update rule; each run of it is a
// [BehaviorStatus] owned by the scene's [BehaviourManager]. Statuses
// started during a frame first run on the next one. The older
// [Behaviour] interface, where each object animates one target, is still
// supported. Tweens use [gween].
//
// # Debug mode
//
// [Scene.SetDebugMode] makes the use of destroyed nodes panic and logs
// warnings about deep or wide trees through [Logger].
//
// [gween]: https://github.com/tanema/gween
package grove
