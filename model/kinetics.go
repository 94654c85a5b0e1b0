package model

// Rates returns the local reaction right-hand side at c (no diffusion).
func Rates(c Conc, p *Params) Conc {
	x2 := c.X * c.X
	x3 := x2 * c.X
	return Conc{
		G: p.K1*p.A - (p.KR1+p.K2)*c.G + p.KR2*c.X,
		X: p.K2*c.G - (p.KR2+p.K3*p.B+p.K5)*c.X + p.KR3*p.Z*c.Y - p.KR4*x3 + p.K4*x2*c.Y + p.KR5*p.Omega,
		Y: p.K3*p.B*c.X - p.KR3*p.Z*c.Y + p.KR4*x3 - p.K4*x2*c.Y,
	}
}

// React advances one cell by a single explicit Euler step of length p.DT.
// lap holds the Laplacian of each species at the cell.
func React(c, lap Conc, p *Params) Conc {
	r := Rates(c, p)
	return Conc{
		G: c.G + p.DT*(r.G+p.DG*lap.G),
		X: c.X + p.DT*(r.X+p.DX*lap.X),
		Y: c.Y + p.DT*(r.Y+p.DY*lap.Y),
	}
}
