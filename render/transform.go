package render

import "github.com/go-gl/mathgl/mgl32"

// ComposeTransform builds M = T * R * S, with R = Rz * Ry * Rx and angles in degrees.
// Scale applies first, then rotation about X, Y, Z, then translation.
func ComposeTransform(scale, anglesDeg, position mgl32.Vec3) mgl32.Mat4 {
	translate := mgl32.Translate3D(position.X(), position.Y(), position.Z())
	rotate := mgl32.HomogRotate3DZ(mgl32.DegToRad(anglesDeg.Z())).
		Mul4(mgl32.HomogRotate3DY(mgl32.DegToRad(anglesDeg.Y()))).
		Mul4(mgl32.HomogRotate3DX(mgl32.DegToRad(anglesDeg.X())))
	s := mgl32.Scale3D(scale.X(), scale.Y(), scale.Z())

	return translate.Mul4(rotate).Mul4(s)
}

// NormalMatrix returns the inverse transpose of the upper 3x3 of m.
func NormalMatrix(m mgl32.Mat4) mgl32.Mat3 {
	return m.Mat3().Inv().Transpose()
}
