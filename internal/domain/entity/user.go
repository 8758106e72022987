package entity

// Roles válidos en el token JWT. La emisión de sesiones es externa a este servicio;
// aquí solo se verifican.
const (
	RoleAdmin     = "admin"
	RoleBodeguero = "bodeguero"
	RoleVendedor  = "vendedor"
)
