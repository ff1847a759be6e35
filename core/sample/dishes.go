package sample

var (
	breakfasts = []string{
		"Leche", "Batido", "Zumo de frutas",
		"Tostadas con mermelada", "Cereales integrales",
		"Bizcocho casero", "Pan con tomate y aceite de oliva",
		"Porridge con frutas", "Croissant integral",
		"Pan con mantequilla y miel", "Tostadas con queso fresco",
		"Smoothie de frutas", "Magdalenas caseras",
		"Crema de cacao casera con pan integral", "Tortitas de avena con plátano",
	}
	snacks = []string{
		"Fruta", "Galletas integrales", "Barrita de cereales",
		"Palitos de zanahoria con hummus", "Mini bocadillo de queso",
		"Yogur bebible", "Crackers integrales con queso fresco",
		"Manzana o pera troceada", "Frutos secos (sin sal y aptos para niños)",
		"Trocitos de plátano seco", "Mini wrap de pavo",
		"Tomatitos cherry", "Bocadillo de crema de cacahuete natural",
		"Rollitos de jamón y queso", "Gajos de naranja",
	}
	firstCourses = []string{
		"Puré de verduras", "Sopa de fideos", "Ensalada de pasta",
		"Crema de calabaza", "Arroz con verduras",
		"Ensalada de arroz con huevo duro", "Guiso de lentejas suave",
		"Macarrones con tomate natural y queso rallado",
		"Puré de zanahoria y patata", "Sopa de pollo con fideos",
		"Arroz a la cubana", "Cuscús con verduras",
		"Puré de guisantes", "Gazpacho suave",
		"Caldo de verduras con arroz",
	}
	secondCourses = []string{
		"Pollo al horno", "Pescado a la plancha", "Albóndigas de carne",
		"Tortilla de patatas", "Hamburguesa de pollo o pavo casera",
		"Merluza rebozada al horno", "Croquetas de pescado o pollo",
		"Revuelto de huevo con espinacas", "Filete de cerdo a la plancha",
		"Empanadillas caseras de atún", "Pollo empanado al horno",
		"Lomo de salmón al vapor", "Brochetas de pollo y verduras",
		"Estofado de ternera suave", "Huevos rellenos de atún",
	}
	desserts = []string{
		"Yogur natural", "Fruta fresca", "Natillas caseras",
		"Flan de huevo", "Compota de manzana",
		"Brochetas de frutas variadas", "Gelatina de frutas sin azúcar añadido",
		"Batido de plátano con leche", "Macedonia de frutas",
		"Tarta de queso al horno", "Brownie saludable de chocolate",
		"Pudding de chía con frutas", "Manzana al horno",
		"Mini magdalena de zanahoria", "Batido de fresas con yogur",
	}
)
