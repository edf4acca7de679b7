// Package ebitenrender displays grove scenes with Ebitengine.
//
// [Context] implements [grove.RenderingContext]. Meshes are transformed
// and lit per vertex on the CPU, then drawn with DrawTriangles32, or with
// DrawTrianglesShader32 while a [grove.ShaderState] is active. Because
// Ebitengine has no depth buffer, the triangles of each mesh are sorted
// back to front when depth testing is enabled, and whole transparent
// nodes are ordered by a [grove.TransparencyRendererState].
//
// [Run] opens a window and drives a [grove.Scene]:
//
//	scene := grove.NewScene()
//	// ... build the tree, set a camera ...
//	if err := ebitenrender.Run(scene, ebitenrender.DefaultRunConfig()); err != nil {
//		log.Fatal(err)
//	}
package ebitenrender
