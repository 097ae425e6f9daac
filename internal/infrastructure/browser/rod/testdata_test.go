package rod

const (
	resultsHTML = `<!DOCTYPE html>
<html>
<head><title>Pisos en alquiler</title></head>
<body>
	<section class="items-list">
		<article class="item" data-element-id="101">
			<a class="item-link" href="/inmueble/101/">Piso en Malasaña</a>
			<span class="item-price">1.250 €/mes</span>
			<span class="item-detail">2 hab.</span><span class="item-detail">65 m²</span>
		</article>
		<article class="item" data-element-id="202">
			<a class="item-link" href="/inmueble/202/">Estudio en Lavapiés</a>
			<span class="item-price">780 €/mes</span>
			<span class="item-detail">1 hab.</span><span class="item-detail">38 m²</span>
		</article>
	</section>
	<div class="pagination"><ul>
		<li class="selected"><span>1</span></li>
		<li><a href="/alquiler-viviendas/madrid/pagina-2.htm">2</a></li>
		<li class="next"><a href="/alquiler-viviendas/madrid/pagina-2.htm">Siguiente</a></li>
	</ul></div>
</body>
</html>`

	detailHTML = `<!DOCTYPE html>
<html><body><div class="comment"><p>Ático con terraza</p></div></body></html>`
)
